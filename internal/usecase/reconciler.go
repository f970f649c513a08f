package usecase

import (
	"context"
	"sync"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/logger"
)

// Reconciler repairs job application counters that drifted because an
// increment or decrement failed after its application row was committed.
//
// Apply and withdraw commit the application row before touching the counter,
// so a pass can catch a job between those two writes. Drift is therefore only
// repaired once it has been seen, unchanged, on two consecutive passes; an
// in-flight counter op either settles it or changes it before then.
type Reconciler struct {
	jobs domain.JobRepository

	mu       sync.Mutex
	suspects map[int64]int64
}

func NewReconciler(jobs domain.JobRepository) *Reconciler {
	return &Reconciler{jobs: jobs}
}

// RunOnce repairs the drift confirmed since the previous pass, then records
// what is drifted now for the next one. It returns how many jobs were
// corrected.
func (r *Reconciler) RunOnce(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var fixed int64
	if len(r.suspects) > 0 {
		n, err := r.jobs.RepairApplicationCounts(ctx, r.suspects)
		if err != nil {
			return 0, err
		}
		fixed = n
	}

	drift, err := r.jobs.ApplicationCountDrift(ctx)
	if err != nil {
		return fixed, err
	}
	r.suspects = drift

	if fixed > 0 {
		logger.Log.Warn("application counts reconciled", "jobs_fixed", fixed)
	}
	if len(drift) > 0 {
		logger.Log.Debug("application count drift observed", "jobs", len(drift))
	}
	return fixed, nil
}

// Settle runs two passes separated by delay, which is enough to repair any
// drift that is not still moving. Used by one-shot callers such as the CLI.
func (r *Reconciler) Settle(ctx context.Context, delay time.Duration) (int64, error) {
	if _, err := r.RunOnce(ctx); err != nil {
		return 0, err
	}
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(delay):
	}
	return r.RunOnce(ctx)
}

// Run reconciles every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Log.Info("application count reconciler started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("application count reconciler stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Log.Error("application count reconciliation failed", "error", err)
			}
		}
	}
}
