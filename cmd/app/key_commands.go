package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/appconfig/cmd/app/commands"
	"github.com/allisson/appconfig/internal/app"
	"github.com/allisson/appconfig/internal/config"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-key",
			Usage: "Generate the next version of a key type",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Logical key type (e.g., billing)",
				},
				&cli.IntFlag{
					Name:    "bytes",
					Aliases: []string{"b"},
					Value:   0,
					Usage:   "Hash/IV length in bytes (16-255, 0 for the default)",
				},
				&cli.BoolFlag{
					Name:    "rotate",
					Aliases: []string{"r"},
					Value:   false,
					Usage:   "Expire the key after --duration",
				},
				&cli.StringFlag{
					Name:    "duration",
					Aliases: []string{"d"},
					Usage:   "Rotation period (e.g., 30d, 12h, 6M)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("type"),
					int(cmd.Int("bytes")),
					cmd.Bool("rotate"),
					cmd.String("duration"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-key",
			Usage: "Make a new version the active key of a type",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Logical key type (e.g., billing)",
				},
				&cli.IntFlag{
					Name:    "bytes",
					Aliases: []string{"b"},
					Value:   0,
					Usage:   "Hash/IV length in bytes (16-255, 0 for the default)",
				},
				&cli.StringFlag{
					Name:    "duration",
					Aliases: []string{"d"},
					Usage:   "Rotation period of the new version (omit for no expiry)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("type"),
					int(cmd.Int("bytes")),
					cmd.String("duration"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-keys",
			Usage: "List the versions of a key type",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Logical key type (e.g., billing)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunListKeys(
					ctx,
					keyUseCase,
					commands.DefaultIO().Writer,
					cmd.String("type"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-key",
			Usage: "Check a secret against the stored hash of a key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Key ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Candidate secret",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("secret"),
					cmd.String("format"),
				)
			},
		},
	}
}
