package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardMeta contains metadata about the last sync.
type LeaderboardMeta struct {
	LastUpdatedAt  time.Time `json:"last_updated_at"`
	TotalStudents  int       `json:"total_students"`
	TotalBalance   int       `json:"total_balance"`
	AverageBalance float64   `json:"average_balance"`
	Version        uint64    `json:"version"`
}

// LeaderboardCache mirrors the points ranking into Redis.
//
// Layout:
//   - Sorted set "classroom:leaderboard:scores" stores studentID -> balance
//   - Hash "classroom:leaderboard:info" stores studentID -> entry JSON
//   - String "classroom:leaderboard:meta" stores LeaderboardMeta
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache creates a new LeaderboardCache instance.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// Rebuild replaces the mirror with entries in one transaction.
func (l *LeaderboardCache) Rebuild(ctx context.Context, entries []classroom.LeaderboardEntry, version uint64) error {
	members, info, meta := leaderboardPayload(entries, version, time.Now().UTC())
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	pipe := l.cache.Client().TxPipeline()
	pipe.Del(ctx, LeaderboardScoresKey(), LeaderboardInfoKey())
	if len(members) > 0 {
		pipe.ZAdd(ctx, LeaderboardScoresKey(), members...)
		pipe.HSet(ctx, LeaderboardInfoKey(), info)
		pipe.Expire(ctx, LeaderboardScoresKey(), TTLLeaderboardCache)
		pipe.Expire(ctx, LeaderboardInfoKey(), TTLLeaderboardCache)
	}
	pipe.Set(ctx, LeaderboardMetaKey(), metaData, TTLLeaderboardCache)

	_, err = pipe.Exec(ctx)
	return err
}

// Top returns the n best entries. Ranks are recomputed from scores so ties
// share a rank the same way the in-memory selector does.
func (l *LeaderboardCache) Top(ctx context.Context, n int) ([]classroom.LeaderboardEntry, error) {
	if n <= 0 {
		return []classroom.LeaderboardEntry{}, nil
	}

	ids, err := l.cache.Client().ZRevRange(ctx, LeaderboardScoresKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []classroom.LeaderboardEntry{}, nil
	}

	raw, err := l.cache.Client().HMGet(ctx, LeaderboardInfoKey(), ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]classroom.LeaderboardEntry, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var e classroom.LeaderboardEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Meta returns the metadata of the last sync.
func (l *LeaderboardCache) Meta(ctx context.Context) (*LeaderboardMeta, error) {
	var meta LeaderboardMeta
	if err := l.cache.Get(ctx, LeaderboardMetaKey(), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func leaderboardPayload(entries []classroom.LeaderboardEntry, version uint64, now time.Time) ([]redis.Z, map[string]any, LeaderboardMeta) {
	members := make([]redis.Z, 0, len(entries))
	info := make(map[string]any, len(entries))
	meta := LeaderboardMeta{LastUpdatedAt: now, Version: version}

	for _, e := range entries {
		if e.StudentID == "" {
			continue
		}
		data, err := json.Marshal(e)
		if err != nil {
			continue
		}
		members = append(members, redis.Z{Score: float64(e.Balance), Member: e.StudentID})
		info[e.StudentID] = string(data)
		meta.TotalBalance += e.Balance
	}

	meta.TotalStudents = len(members)
	if meta.TotalStudents > 0 {
		meta.AverageBalance = float64(meta.TotalBalance) / float64(meta.TotalStudents)
	}
	return members, info, meta
}
