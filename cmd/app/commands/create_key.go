package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	"github.com/allisson/appconfig/internal/key/http/dto"
	keyUseCase "github.com/allisson/appconfig/internal/key/usecase"
)

// RunCreateKey generates the next version of a key type and demotes the previous one.
// Only the key metadata is printed; the secret stays in the material store.
//
// Requirements: Database must be migrated and KEY_STORE_URL must be writable.
func RunCreateKey(
	ctx context.Context,
	keyUC keyUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	keyType string,
	bytes int,
	rotate bool,
	duration string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	req := dto.GenerateKeyRequest{
		Type:     keyType,
		Bytes:    bytes,
		Rotate:   rotate,
		Duration: duration,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid key parameters: %w", err)
	}

	normalized, err := keyDomain.NormalizeType(req.Type)
	if err != nil {
		return err
	}

	rotateDuration, err := req.RotateDuration()
	if err != nil {
		return err
	}

	logger.Info("creating key",
		slog.String("type", normalized),
		slog.Int("bytes", bytes),
		slog.Bool("rotate", rotate),
	)

	rotateKey, err := keyUC.Generate(ctx, keyDomain.GenerateInput{
		Type:      normalized,
		Bytes:     req.Bytes,
		UseRotate: req.Rotate,
		Duration:  rotateDuration,
	})
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}

	response := dto.MapRotateKeyToResponse(normalized, rotateKey)
	if format == "json" {
		if err := writeJSON(writer, response); err != nil {
			return err
		}
	} else {
		outputKeyText(writer, response)
	}

	logger.Info("key created successfully",
		slog.String("id", response.ID),
		slog.String("type", response.Type),
		slog.Uint64("version", uint64(response.Version)),
	)

	return nil
}

// outputKeyText prints key metadata in human-readable text format.
func outputKeyText(writer io.Writer, key dto.KeyResponse) {
	_, _ = fmt.Fprintf(writer, "ID:         %s\n", key.ID)
	_, _ = fmt.Fprintf(writer, "Type:       %s\n", key.Type)
	_, _ = fmt.Fprintf(writer, "Version:    %d\n", key.Version)
	_, _ = fmt.Fprintf(writer, "Hash bytes: %d\n", key.HashBytes)
}
