package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "classroom:leaderboard:scores", LeaderboardScoresKey())
	assert.Equal(t, "classroom:leaderboard:info", LeaderboardInfoKey())
	assert.Equal(t, "classroom:leaderboard:meta", LeaderboardMetaKey())
	assert.Equal(t, "classroom:toasts", ChannelToasts)
}

func TestConfig_Addr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr())

	cfg.Host, cfg.Port = "redis", 6380
	assert.Equal(t, "redis:6380", cfg.Addr())
}

func TestLeaderboardPayload(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	entries := []classroom.LeaderboardEntry{
		{Rank: 1, StudentID: "s2", Name: "Trần Bảo Ngọc", Balance: 120},
		{Rank: 2, StudentID: "s6", Name: "Đặng Khánh Linh", Balance: 95},
		{Rank: 3, StudentID: "", Name: "broken", Balance: 1000},
	}

	members, info, meta := leaderboardPayload(entries, 42, now)

	require.Len(t, members, 2)
	assert.Equal(t, float64(120), members[0].Score)
	assert.Equal(t, "s2", members[0].Member)
	assert.Len(t, info, 2)
	assert.Contains(t, info["s6"], `"name":"Đặng Khánh Linh"`)

	assert.Equal(t, uint64(42), meta.Version)
	assert.Equal(t, 2, meta.TotalStudents)
	assert.Equal(t, 215, meta.TotalBalance)
	assert.InDelta(t, 107.5, meta.AverageBalance, 0.001)
	assert.Equal(t, now, meta.LastUpdatedAt)
}

func TestLeaderboardPayload_Empty(t *testing.T) {
	members, info, meta := leaderboardPayload(nil, 1, time.Now())

	assert.Empty(t, members)
	assert.Empty(t, info)
	assert.Equal(t, 0, meta.TotalStudents)
	assert.Zero(t, meta.AverageBalance)
}
