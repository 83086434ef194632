// Package jobs contains the periodic maintenance jobs of the classroom hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alem-hub/classroom-hub/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOAST SWEEP
// ══════════════════════════════════════════════════════════════════════════════

// ToastSweeper removes expired toasts.
type ToastSweeper interface {
	Sweep(ctx context.Context) int
}

// SweepToastsJob dismisses toasts whose expiry timer never fired.
type SweepToastsJob struct {
	toasts ToastSweeper
	logger *slog.Logger
}

// NewSweepToastsJob creates the job.
func NewSweepToastsJob(toasts ToastSweeper, logger *slog.Logger) *SweepToastsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepToastsJob{toasts: toasts, logger: logger}
}

func (j *SweepToastsJob) Name() string { return "toasts.sweep" }

func (j *SweepToastsJob) Description() string {
	return "Dismiss toasts that outlived their TTL"
}

// Run implements scheduler.Job.
func (j *SweepToastsJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n := j.toasts.Sweep(ctx); n > 0 {
		j.logger.Info("stale toasts dismissed", "count", n)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD RESYNC
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardResyncer re-queues the current ranking for the mirror.
type LeaderboardResyncer interface {
	Resync() bool
}

// Pinger checks that the mirror backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Breaker is the part of the circuit breaker the resync job drives.
type Breaker interface {
	State() circuitbreaker.State
	Counts() circuitbreaker.Counts
	Reset()
}

// ResyncLeaderboardJob pushes the full ranking to the mirror periodically, so
// a Redis restart does not leave it empty until the next points change. With
// breaker recovery set, an open breaker is closed early once Redis answers a
// ping again.
type ResyncLeaderboardJob struct {
	view    LeaderboardResyncer
	pinger  Pinger
	breaker Breaker
	logger  *slog.Logger
}

// NewResyncLeaderboardJob creates the job.
func NewResyncLeaderboardJob(view LeaderboardResyncer, logger *slog.Logger) *ResyncLeaderboardJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResyncLeaderboardJob{view: view, logger: logger}
}

// WithBreakerRecovery enables closing b when p succeeds.
func (j *ResyncLeaderboardJob) WithBreakerRecovery(p Pinger, b Breaker) *ResyncLeaderboardJob {
	j.pinger, j.breaker = p, b
	return j
}

func (j *ResyncLeaderboardJob) Name() string { return "leaderboard.resync" }

func (j *ResyncLeaderboardJob) Description() string {
	return "Re-mirror the leaderboard to Redis"
}

// Run implements scheduler.Job. While Redis stays unreachable nothing is
// queued and the ping error is returned.
func (j *ResyncLeaderboardJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if j.breaker != nil && j.pinger != nil && j.breaker.State() != circuitbreaker.StateClosed {
		if err := j.pinger.Ping(ctx); err != nil {
			return fmt.Errorf("mirror still unreachable: %w", err)
		}
		counts := j.breaker.Counts()
		j.breaker.Reset()
		j.logger.Info("mirror reachable again, breaker reset",
			"failures", counts.TotalFailures,
			"requests", counts.Requests,
		)
	}
	j.view.Resync()
	return nil
}
