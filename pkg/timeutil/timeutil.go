// Package timeutil provides helpers for the school timezone (Asia/Ho_Chi_Minh,
// UTC+7, no DST). Timestamps are stored in UTC and converted for display and
// for mapping the calendar onto the schedule grid.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// SchoolTZ is the school timezone (UTC+7, no DST).
var SchoolTZ = time.FixedZone("Asia/Ho_Chi_Minh", 7*60*60)

// Layouts used in user-facing messages.
const (
	DateLayout     = "02/01/2006"
	TimeLayout     = "15:04"
	DateTimeLayout = "15:04 02/01/2006"
)

// Now returns the current time in the school timezone.
func Now() time.Time {
	return time.Now().In(SchoolTZ)
}

// ToSchool converts a time to the school timezone.
func ToSchool(t time.Time) time.Time {
	return t.In(SchoolTZ)
}

// StartOfDay returns local midnight of t's school day.
func StartOfDay(t time.Time) time.Time {
	local := ToSchool(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, SchoolTZ)
}

// StartOfWeek returns Monday 00:00 of t's school week.
func StartOfWeek(t time.Time) time.Time {
	local := ToSchool(t)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(local.AddDate(0, 0, -(weekday - 1)))
}

// DayIndex maps t onto a schedule column: Monday is 0. ok is false when the
// day falls outside the first days columns.
func DayIndex(t time.Time, days int) (idx int, ok bool) {
	weekday := int(ToSchool(t).Weekday())
	if weekday == 0 {
		weekday = 7
	}
	idx = weekday - 1
	return idx, idx < days
}

// IsWeekend checks if t falls on Saturday or Sunday in the school timezone.
func IsWeekend(t time.Time) bool {
	wd := ToSchool(t).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// FormatDateTime formats t for display, e.g. "14:05 18/10/2026".
func FormatDateTime(t time.Time) string {
	return ToSchool(t).Format(DateTimeLayout)
}

// FormatDate formats t as a date, e.g. "18/10/2026".
func FormatDate(t time.Time) string {
	return ToSchool(t).Format(DateLayout)
}

// WeekdayNameVi returns the Vietnamese name of t's weekday.
func WeekdayNameVi(t time.Time) string {
	switch ToSchool(t).Weekday() {
	case time.Monday:
		return "Thứ 2"
	case time.Tuesday:
		return "Thứ 3"
	case time.Wednesday:
		return "Thứ 4"
	case time.Thursday:
		return "Thứ 5"
	case time.Friday:
		return "Thứ 6"
	case time.Saturday:
		return "Thứ 7"
	default:
		return "Chủ nhật"
	}
}
