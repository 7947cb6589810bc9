package attendance

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 9, hour, min, 0, 0, time.UTC)
}

func TestIsLate(t *testing.T) {
	cases := []struct {
		in   time.Time
		want bool
	}{
		{at(8, 0), false},
		{at(10, 0), false},
		{at(10, 59), false},
		{at(11, 0), true},
		{at(14, 30), true},
	}
	for _, tc := range cases {
		if got := IsLate(tc.in); got != tc.want {
			t.Errorf("IsLate(%s) = %v, want %v", tc.in.Format("15:04"), got, tc.want)
		}
	}
}

func TestCheckInStatus(t *testing.T) {
	if got := CheckInStatus(at(9, 0)); got != StatusPresent {
		t.Errorf("on-time check-in = %q, want %q", got, StatusPresent)
	}
	if got := CheckInStatus(at(11, 15)); got != StatusHalfDay {
		t.Errorf("late check-in = %q, want %q", got, StatusHalfDay)
	}
}

func TestWorkedHoursAndOvertime(t *testing.T) {
	in := at(9, 0)

	// Full day plus ninety minutes.
	out := at(18, 30)
	wh := WorkedHours(in, out)
	if wh != 9.5 {
		t.Fatalf("WorkedHours = %v, want 9.5", wh)
	}
	if ot := Overtime(wh); ot != 1.5 {
		t.Errorf("Overtime(%v) = %v, want 1.5", wh, ot)
	}

	// Standard day earns no overtime.
	if ot := Overtime(8.0); ot != 0 {
		t.Errorf("Overtime(8.0) = %v, want 0", ot)
	}

	// Fractional spans round to two decimals.
	if got := WorkedHours(at(9, 0), at(13, 10)); got != 4.17 {
		t.Errorf("WorkedHours = %v, want 4.17", got)
	}
}

func TestIsEarlyDeparture(t *testing.T) {
	if !IsEarlyDeparture(at(16, 59)) {
		t.Error("16:59 should be an early departure")
	}
	if IsEarlyDeparture(at(17, 0)) {
		t.Error("17:00 should not be an early departure")
	}
}

// A late arrival opens as a half day; working at least four hours upgrades it
// to present, fewer keeps the half day.
func TestLateArrivalResolution(t *testing.T) {
	in := at(11, 0)
	status := CheckInStatus(in)
	if status != StatusHalfDay {
		t.Fatalf("late check-in status = %q, want %q", status, StatusHalfDay)
	}

	worked := WorkedHours(in, at(16, 0))
	if got := ResolveStatus(status, worked); got != StatusPresent {
		t.Errorf("5h after late arrival = %q, want %q", got, StatusPresent)
	}

	worked = WorkedHours(in, at(14, 0))
	if got := ResolveStatus(status, worked); got != StatusHalfDay {
		t.Errorf("3h after late arrival = %q, want %q", got, StatusHalfDay)
	}

	// An on-time day never downgrades regardless of hours.
	if got := ResolveStatus(StatusPresent, 2); got != StatusPresent {
		t.Errorf("present with 2h = %q, want %q", got, StatusPresent)
	}
}

func TestDayOf(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 20:00 UTC is already the next day in Kolkata.
	utc := time.Date(2026, time.March, 9, 20, 0, 0, 0, time.UTC)
	day := DayOf(utc, loc)
	if day.Day() != 10 {
		t.Errorf("DayOf in Kolkata = day %d, want 10", day.Day())
	}
	if h, m, sec := day.Clock(); h != 0 || m != 0 || sec != 0 {
		t.Errorf("DayOf not truncated to midnight: %s", day)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPresent, StatusAbsent, StatusHalfDay, StatusOnLeave, StatusHoliday} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus("weekend") {
		t.Error("ValidStatus accepted unknown status")
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(7.996); got != 8.0 {
		t.Errorf("Round2(7.996) = %v, want 8", got)
	}
	if got := Round2(4.164); got != 4.16 {
		t.Errorf("Round2(4.164) = %v, want 4.16", got)
	}
}
