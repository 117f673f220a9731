package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/appconfig/internal/database"
	keyUseCase "github.com/allisson/appconfig/internal/key/usecase"
)

// RunRetireExpiredKeys runs one sweep: keys that expired more than grace ago are
// retired and their material deleted. It is the manual counterpart of the sweeper
// started by the server.
func RunRetireExpiredKeys(
	ctx context.Context,
	txManager database.TxManager,
	keyUC keyUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	grace time.Duration,
	batchSize int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if grace < 0 {
		return fmt.Errorf("grace must not be negative, got: %s", grace)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be a positive number, got: %d", batchSize)
	}

	logger.Info("retiring expired keys",
		slog.Duration("grace", grace),
		slog.Int("batch_size", batchSize),
	)

	sweeper := keyUseCase.NewSweeper(
		keyUseCase.SweeperConfig{Grace: grace, BatchSize: batchSize},
		txManager,
		keyUC,
		logger,
	)
	count, err := sweeper.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("failed to retire expired keys: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"count":      count,
			"grace":      grace.String(),
			"batch_size": batchSize,
		})
	}

	_, _ = fmt.Fprintf(writer, "Retired %d expired key(s) older than %s\n", count, grace)
	return nil
}
