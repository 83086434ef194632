// Package projections implements read models fed by the store change feed.
// Projections are denormalized views optimized for fast reads and may lag the
// state tree by one dispatch.
package projections

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alem-hub/classroom-hub/internal/application/store"
	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/pkg/circuitbreaker"
	"github.com/alem-hub/classroom-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD VIEW
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardMirror receives full leaderboard snapshots.
type LeaderboardMirror interface {
	Rebuild(ctx context.Context, entries []classroom.LeaderboardEntry, version uint64) error
}

// LeaderboardMetadata holds aggregate statistics of the view.
type LeaderboardMetadata struct {
	Version       uint64    `json:"version"`
	TotalStudents int       `json:"total_students"`
	TotalBalance  int       `json:"total_balance"`
	LastUpdated   time.Time `json:"last_updated"`
}

// LeaderboardView keeps the points ranking up to date and mirrors it to an
// optional external store. Only dispatches that replace the student list
// trigger a rebuild.
type LeaderboardView struct {
	mu       sync.RWMutex
	entries  []classroom.LeaderboardEntry
	metadata LeaderboardMetadata

	mirror  LeaderboardMirror
	breaker *circuitbreaker.CircuitBreaker
	retry   []retry.Option
	logger  *slog.Logger

	pending chan snapshot
}

type snapshot struct {
	version uint64
	entries []classroom.LeaderboardEntry
}

// NewLeaderboardView creates the view. mirror may be nil.
func NewLeaderboardView(mirror LeaderboardMirror, logger *slog.Logger, retryOpts ...retry.Option) *LeaderboardView {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardView{
		entries: []classroom.LeaderboardEntry{},
		mirror:  mirror,
		retry:   retryOpts,
		logger:  logger,
		pending: make(chan snapshot, 1),
	}
}

// WithBreaker guards mirror pushes. A rejected push is not retried.
func (lv *LeaderboardView) WithBreaker(cb *circuitbreaker.CircuitBreaker) *LeaderboardView {
	lv.breaker = cb
	return lv
}

// Rebuild recomputes the view from a full state.
func (lv *LeaderboardView) Rebuild(state classroom.State, version uint64) {
	entries := classroom.Leaderboard(state)

	total := 0
	for _, e := range entries {
		total += e.Balance
	}

	lv.mu.Lock()
	if version < lv.metadata.Version {
		lv.mu.Unlock()
		return
	}
	lv.entries = entries
	lv.metadata = LeaderboardMetadata{
		Version:       version,
		TotalStudents: len(entries),
		TotalBalance:  total,
		LastUpdated:   time.Now().UTC(),
	}
	lv.mu.Unlock()

	lv.enqueue(snapshot{version: version, entries: entries})
}

// Resync queues the current snapshot for the mirror again, for a mirror that
// may have lost its data. It reports whether anything was queued.
func (lv *LeaderboardView) Resync() bool {
	if lv.mirror == nil {
		return false
	}
	lv.mu.RLock()
	snap := snapshot{
		version: lv.metadata.Version,
		entries: append([]classroom.LeaderboardEntry(nil), lv.entries...),
	}
	lv.mu.RUnlock()

	lv.enqueue(snap)
	return true
}

// Handle is a store.Listener.
func (lv *LeaderboardView) Handle(c store.Change) {
	if sameStudents(c.Prev.Students, c.Next.Students) {
		return
	}
	lv.Rebuild(c.Next, c.Version)
}

// Top returns the limit best entries. A limit <= 0 returns all of them.
func (lv *LeaderboardView) Top(limit int) []classroom.LeaderboardEntry {
	lv.mu.RLock()
	defer lv.mu.RUnlock()

	n := len(lv.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]classroom.LeaderboardEntry(nil), lv.entries[:n]...)
}

// Metadata returns the aggregate statistics.
func (lv *LeaderboardView) Metadata() LeaderboardMetadata {
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	return lv.metadata
}

// Run pushes snapshots to the mirror until ctx ends. Only the latest pending
// snapshot is pushed; older ones are superseded.
func (lv *LeaderboardView) Run(ctx context.Context) {
	if lv.mirror == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-lv.pending:
			lv.push(ctx, snap)
		}
	}
}

func (lv *LeaderboardView) push(ctx context.Context, snap snapshot) {
	opts := append([]retry.Option{
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			lv.logger.Warn("leaderboard mirror retry", "attempt", attempt, "delay", delay, "error", err)
		}),
	}, lv.retry...)

	err := retry.Do(ctx, func(ctx context.Context) error {
		err := lv.breaker.Execute(ctx, func(ctx context.Context) error {
			return lv.mirror.Rebuild(ctx, snap.entries, snap.version)
		})
		if circuitbreaker.IsRejected(err) {
			return retry.Permanent(err)
		}
		return err
	}, opts...)
	if err != nil {
		lv.logger.Error("leaderboard mirror failed", "version", snap.version, "error", err)
		return
	}
	lv.logger.Debug("leaderboard mirrored", "version", snap.version, "entries", len(snap.entries))
}

func (lv *LeaderboardView) enqueue(s snapshot) {
	if lv.mirror == nil {
		return
	}
	for {
		select {
		case lv.pending <- s:
			return
		default:
		}
		select {
		case <-lv.pending:
		default:
		}
	}
}

func sameStudents(a, b []classroom.Student) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
