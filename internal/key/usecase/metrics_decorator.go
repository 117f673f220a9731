package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	"github.com/allisson/appconfig/internal/metrics"
)

const metricsDomain = "keys"

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (k *keyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	k.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Generate records metrics for key generation.
func (k *keyUseCaseWithMetrics) Generate(
	ctx context.Context,
	input keyDomain.GenerateInput,
) (*keyDomain.RotateKey, error) {
	start := time.Now()
	key, err := k.next.Generate(ctx, input)
	k.record(ctx, "key_generate", start, err)
	if err == nil {
		k.metrics.RecordKeyEvent(ctx, metrics.KeyEventGenerated, 1)
	}
	return key, err
}

// GetRotateKey records metrics for key resolution and counts renewals on access.
func (k *keyUseCaseWithMetrics) GetRotateKey(
	ctx context.Context,
	keyType string,
	opts keyDomain.RotateOptions,
) (*keyDomain.RotateKey, error) {
	start := time.Now()
	key, err := k.next.GetRotateKey(ctx, keyType, opts)
	k.record(ctx, "key_rotate_get", start, err)
	if err == nil && key.ExpiredKey != nil {
		k.metrics.RecordKeyEvent(ctx, metrics.KeyEventRenewed, 1)
	}
	return key, err
}

// Verify records metrics for key verification.
func (k *keyUseCaseWithMetrics) Verify(ctx context.Context, keyID uuid.UUID, candidate string) (bool, error) {
	start := time.Now()
	ok, err := k.next.Verify(ctx, keyID, candidate)
	k.record(ctx, "key_verify", start, err)
	return ok, err
}

// List records metrics for key listing.
func (k *keyUseCaseWithMetrics) List(ctx context.Context, keyType string) ([]*keyDomain.Key, error) {
	start := time.Now()
	keys, err := k.next.List(ctx, keyType)
	k.record(ctx, "key_list", start, err)
	return keys, err
}

// RetireExpired records metrics for expired key retirement.
func (k *keyUseCaseWithMetrics) RetireExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	start := time.Now()
	retired, err := k.next.RetireExpired(ctx, before, limit)
	k.record(ctx, "key_retire_expired", start, err)
	k.metrics.RecordKeyEvent(ctx, metrics.KeyEventRetired, retired)
	return retired, err
}
