package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

// RotationSweeper evicts stale entries from the key cache on a fixed
// interval. It runs only under a policy with sweeping enabled; development
// caches rely on lazy re-derivation alone.
type RotationSweeper struct {
	policy   domain.Policy
	keyStore service.KeyStore
	interval time.Duration
	logger   *slog.Logger
}

// NewRotationSweeper creates a RotationSweeper. A non-positive interval
// falls back to the policy's rotation interval.
func NewRotationSweeper(
	policy domain.Policy,
	keyStore service.KeyStore,
	interval time.Duration,
	logger *slog.Logger,
) *RotationSweeper {
	if interval <= 0 {
		interval = policy.RotationInterval
	}
	return &RotationSweeper{
		policy:   policy,
		keyStore: keyStore,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep loop until the context is cancelled. Under a policy
// without sweeping it returns immediately.
func (s *RotationSweeper) Start(ctx context.Context) error {
	if !s.policy.SweepEnabled {
		s.logger.Info("rotation sweeper disabled",
			slog.String("environment", string(s.policy.Environment)),
		)
		return nil
	}

	s.logger.Info("starting rotation sweeper",
		slog.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping rotation sweeper")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep performs a single eviction pass. Every pass logs its count, zero
// included, so operators can tell the sweeper is alive.
func (s *RotationSweeper) Sweep() int {
	removed := s.keyStore.SweepStale()
	s.logger.Info("rotation sweep completed",
		slog.Int("removed", removed),
	)
	return removed
}
