package commands

import (
	"context"
	"io"
	"log/slog"

	keyUseCase "github.com/allisson/appconfig/internal/key/usecase"
)

// RunRotateKey makes a new version the active one. With a duration the new version
// rotates on its own; without one it lives until the next manual rotation.
func RunRotateKey(
	ctx context.Context,
	keyUC keyUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	keyType string,
	bytes int,
	duration string,
	format string,
) error {
	logger.Info("rotating key", slog.String("type", keyType))
	return RunCreateKey(ctx, keyUC, logger, writer, keyType, bytes, duration != "", duration, format)
}
