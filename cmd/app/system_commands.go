package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/appconfig/cmd/app/commands"
	"github.com/allisson/appconfig/internal/app"
	"github.com/allisson/appconfig/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server, the metrics server and the expired key sweeper",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "retire-expired-keys",
			Usage: "Retire keys that expired longer ago than the grace period",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:    "grace",
					Aliases: []string{"g"},
					Value:   720 * time.Hour,
					Usage:   "How long an expired key stays renewable before it is retired",
				},
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   100,
					Usage:   "Maximum number of keys retired in this run",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				txManager, err := container.TxManager()
				if err != nil {
					return err
				}

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunRetireExpiredKeys(
					ctx,
					txManager,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Duration("grace"),
					int(cmd.Int("batch-size")),
					cmd.String("format"),
				)
			},
		},
	}
}
