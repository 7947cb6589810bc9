package attendance

import (
	"math"
	"time"
)

// Workday thresholds, evaluated in the company timezone.
const (
	LateHour        = 10
	EarlyHour       = 17
	StandardHours   = 8.0
	HalfDayMinHours = 4.0
)

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IsLate reports whether a check-in lands after the grace window. Anything
// inside the 10 o'clock hour still counts as on time.
func IsLate(checkIn time.Time) bool {
	return checkIn.Hour() > LateHour
}

// CheckInStatus is the provisional status at check-in time. A late arrival
// opens as a half day and may be upgraded at check-out.
func CheckInStatus(checkIn time.Time) string {
	if IsLate(checkIn) {
		return StatusHalfDay
	}
	return StatusPresent
}

// WorkedHours is the rounded span between check-in and check-out.
func WorkedHours(in, out time.Time) float64 {
	return Round2(out.Sub(in).Hours())
}

func Overtime(workedHours float64) float64 {
	if workedHours > StandardHours {
		return Round2(workedHours - StandardHours)
	}
	return 0
}

func IsEarlyDeparture(out time.Time) bool {
	return out.Hour() < EarlyHour
}

// ResolveStatus upgrades a provisional half day to present once the worked
// hours clear the half-day floor.
func ResolveStatus(status string, workedHours float64) string {
	if status == StatusHalfDay && workedHours >= HalfDayMinHours {
		return StatusPresent
	}
	return status
}

// DayOf truncates t to its calendar date in loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
