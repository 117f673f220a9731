package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/appconfig/internal/database"
)

// Defaults applied by NewSweeper to non-positive settings.
const (
	DefaultSweeperInterval  = time.Hour
	DefaultSweeperBatchSize = 100
)

// SweeperConfig holds expired key sweeper configuration.
type SweeperConfig struct {
	// Interval is the time between runs.
	Interval time.Duration
	// Grace is how long an expired key stays resolvable before it is retired.
	Grace time.Duration
	// BatchSize is the maximum number of keys retired per run.
	BatchSize int
}

// Sweeper periodically retires keys whose expiry is older than the grace period.
// Until then an expired key can still be renewed, which hands its secret out
// once so stale ciphertext can be resealed.
type Sweeper struct {
	config    SweeperConfig
	txManager database.TxManager
	keyUC     KeyUseCase
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweeper creates a new Sweeper.
func NewSweeper(config SweeperConfig, txManager database.TxManager, keyUC KeyUseCase, logger *slog.Logger) *Sweeper {
	if config.Interval <= 0 {
		logger.Warn("invalid sweeper interval, using default",
			slog.Duration("interval", config.Interval),
			slog.Duration("default", DefaultSweeperInterval),
		)
		config.Interval = DefaultSweeperInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSweeperBatchSize
	}

	return &Sweeper{
		config:    config,
		txManager: txManager,
		keyUC:     keyUC,
		logger:    logger,
		now:       time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("starting expired key sweeper",
		slog.Duration("interval", s.config.Interval),
		slog.Duration("grace", s.config.Grace),
		slog.Int("batch_size", s.config.BatchSize),
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping expired key sweeper")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("failed to retire expired keys", slog.Any("error", err))
			}
		}
	}
}

// RunOnce retires one batch in a transaction and returns how many keys were retired.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	before := s.now().UTC().Add(-s.config.Grace)

	var retired int
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		retired, err = s.keyUC.RetireExpired(ctx, before, s.config.BatchSize)
		return err
	})
	if err != nil {
		return 0, err
	}

	if retired > 0 {
		s.logger.Info("retired expired keys", slog.Int("count", retired))
	}
	return retired, nil
}
