package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToSchool(t *testing.T) {
	// 20:00 UTC Sunday is already Monday 03:00 in the school zone
	utc := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

	local := ToSchool(utc)

	assert.Equal(t, time.Monday, local.Weekday())
	assert.Equal(t, 3, local.Hour())
	assert.True(t, local.Equal(utc))
}

func TestDayIndex(t *testing.T) {
	monday := time.Date(2026, 10, 19, 8, 0, 0, 0, SchoolTZ)

	idx, ok := DayIndex(monday, 5)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = DayIndex(monday.AddDate(0, 0, 4), 5)
	assert.True(t, ok)
	assert.Equal(t, 4, idx)

	_, ok = DayIndex(monday.AddDate(0, 0, 5), 5)
	assert.False(t, ok)

	idx, ok = DayIndex(monday.AddDate(0, 0, 6), 7)
	assert.True(t, ok)
	assert.Equal(t, 6, idx)
}

func TestStartOfWeek(t *testing.T) {
	sunday := time.Date(2026, 10, 25, 22, 30, 0, 0, SchoolTZ)

	start := StartOfWeek(sunday)

	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, SchoolTZ), start)
	assert.Equal(t, time.Date(2026, 10, 25, 0, 0, 0, 0, SchoolTZ), StartOfDay(sunday))
}

func TestFormatting(t *testing.T) {
	at := time.Date(2026, 10, 19, 7, 5, 0, 0, time.UTC)

	assert.Equal(t, "14:05 19/10/2026", FormatDateTime(at))
	assert.Equal(t, "19/10/2026", FormatDate(at))
	assert.Equal(t, "Thứ 2", WeekdayNameVi(at))
	assert.Equal(t, "Chủ nhật", WeekdayNameVi(at.AddDate(0, 0, 6)))
	assert.False(t, IsWeekend(at))
	assert.True(t, IsWeekend(at.AddDate(0, 0, 5)))
}
