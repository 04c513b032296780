package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hyperengineering/nurture/internal/observability"
)

// SweepStore defines the store operations needed by the challenge sweep worker.
type SweepStore interface {
	SweepChallenges(ctx context.Context, issuedBefore time.Time) (int64, error)
}

// ChallengeSweepWorker periodically deletes stale verification challenges.
type ChallengeSweepWorker struct {
	store    SweepStore
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

// NewChallengeSweepWorker creates a worker that runs every interval and
// removes challenges issued more than maxAge ago.
func NewChallengeSweepWorker(store SweepStore, interval, maxAge time.Duration) *ChallengeSweepWorker {
	return &ChallengeSweepWorker{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Does NOT run immediately on start.
func (w *ChallengeSweepWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "challenge-sweep",
		"interval", w.interval.String(),
		"max_age", w.maxAge.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "challenge-sweep",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep executes a single sweep cycle and returns the number of
// challenges removed.
func (w *ChallengeSweepWorker) Sweep(ctx context.Context) int64 {
	start := w.now()
	cutoff := start.Add(-w.maxAge)

	slog.Debug("sweep cycle started",
		"component", "worker",
		"action", "sweep_start",
		"cutoff", cutoff.Format(time.RFC3339),
	)

	removed, err := w.store.SweepChallenges(ctx, cutoff)
	if err != nil {
		// Check for graceful shutdown
		if ctx.Err() != nil {
			return 0
		}
		slog.Error("sweep failed",
			"component", "worker",
			"action", "sweep_failed",
			"error", err,
		)
		return 0
	}

	observability.RecordChallengesSwept(removed)
	slog.Info("sweep cycle completed",
		"component", "worker",
		"action", "sweep_complete",
		"removed", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return removed
}
