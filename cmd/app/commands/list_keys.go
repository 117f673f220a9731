package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	"github.com/allisson/appconfig/internal/key/http/dto"
	keyUseCase "github.com/allisson/appconfig/internal/key/usecase"
)

// RunListKeys prints every version of a key type, newest first.
func RunListKeys(
	ctx context.Context,
	keyUC keyUseCase.KeyUseCase,
	writer io.Writer,
	keyType string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	normalized, err := keyDomain.NormalizeType(keyType)
	if err != nil {
		return err
	}

	keys, err := keyUC.List(ctx, normalized)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	response := dto.MapKeysToListResponse(keys)
	if format == "json" {
		return writeJSON(writer, response)
	}

	if len(response.Data) == 0 {
		_, _ = fmt.Fprintf(writer, "No keys found for type %s\n", normalized)
		return nil
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tSTATUS\tDURATION\tEXPIRE AT\tID")
	for _, key := range response.Data {
		duration := "-"
		if key.Duration != nil {
			duration = *key.Duration
		}
		expireAt := "-"
		if key.ExpireAt != nil {
			expireAt = key.ExpireAt.UTC().Format("2006-01-02 15:04:05")
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", key.Version, key.Status, duration, expireAt, key.ID)
	}
	return tw.Flush()
}
