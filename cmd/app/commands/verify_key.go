package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/appconfig/internal/key/http/dto"
	keyUseCase "github.com/allisson/appconfig/internal/key/usecase"
)

// RunVerifyKey checks a candidate secret against the stored hash of a key.
// A mismatch is reported as an error so scripts can rely on the exit code.
func RunVerifyKey(
	ctx context.Context,
	keyUC keyUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	keyID string,
	secret string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	id, err := uuid.Parse(keyID)
	if err != nil {
		return fmt.Errorf("invalid key id: %w", err)
	}
	if secret == "" {
		return fmt.Errorf("secret must not be empty")
	}

	valid, err := keyUC.Verify(ctx, id, secret)
	if err != nil {
		return fmt.Errorf("failed to verify key: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, dto.VerifyKeyResponse{Valid: valid}); err != nil {
			return err
		}
	} else if valid {
		_, _ = fmt.Fprintln(writer, "Secret matches the key")
	} else {
		_, _ = fmt.Fprintln(writer, "Secret does not match the key")
	}

	logger.Info("key verified", slog.String("id", id.String()), slog.Bool("valid", valid))

	if !valid {
		return fmt.Errorf("secret does not match key %s", id)
	}
	return nil
}
