package schedule

import (
	"time"

	"mailminder-backend/internal/monitor/domain"
)

// NextMidnight is the start of the following calendar day in t's location
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// WindowEnd returns the instant the currently active window closes. When both
// hybrid windows are active the later close wins. Falls back to next midnight
// when no window is active or a clock string fails to parse.
func WindowEnd(s domain.Schedule, now time.Time) time.Time {
	var end time.Time

	if recurringDue(s.Recurring, now) {
		if e, ok := windowClose(now, s.Recurring.StartTime, s.Recurring.EndTime); ok {
			end = e
		}
	}
	if specificDatesDue(s.SpecificDates, now) {
		if e, ok := windowClose(now, s.SpecificDates.StartTime, s.SpecificDates.EndTime); ok && e.After(end) {
			end = e
		}
	}

	if end.IsZero() {
		return NextMidnight(now)
	}
	return end
}

// NextPeriodStart returns the midnight opening the next accounting period in
// which the schedule has a window, scanning up to two weeks ahead. If the
// schedule never becomes due again within that horizon (for example an
// exhausted specific-dates list), the monitor stays suppressed for the full
// horizon and the due check keeps it idle afterwards.
func NextPeriodStart(s domain.Schedule, now time.Time) time.Time {
	day := NextMidnight(now)
	for i := 0; i < 14; i++ {
		if scheduledOn(s, day) {
			return day
		}
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// windowClose computes when a window containing now closes, carrying a
// wrapped end past midnight
func windowClose(now time.Time, startTime, endTime string) (time.Time, bool) {
	start, ok := parseClock(startTime)
	if !ok {
		return time.Time{}, false
	}
	end, ok := parseClock(endTime)
	if !ok {
		return time.Time{}, false
	}

	y, m, d := now.Date()
	closes := time.Date(y, m, d, end/60, end%60, 0, 0, now.Location())
	if end < start && clockMinutes(now) >= start {
		closes = closes.AddDate(0, 0, 1)
	}
	return closes, true
}

// scheduledOn reports whether the schedule has any window on the given
// calendar day, regardless of clock time
func scheduledOn(s domain.Schedule, day time.Time) bool {
	switch s.Kind {
	case domain.ScheduleRecurring:
		return s.Recurring != nil && containsFold(s.Recurring.DaysOfWeek, day.Weekday().String())
	case domain.ScheduleSpecificDates:
		return s.SpecificDates != nil && containsDate(s.SpecificDates.Dates, day)
	case domain.ScheduleHybrid:
		if s.Recurring != nil && containsFold(s.Recurring.DaysOfWeek, day.Weekday().String()) {
			return true
		}
		return s.SpecificDates != nil && containsDate(s.SpecificDates.Dates, day)
	}
	return false
}

func containsDate(dates []string, day time.Time) bool {
	formatted := day.Format("2006-01-02")
	for _, d := range dates {
		if d == formatted {
			return true
		}
	}
	return false
}
