package schedule

import (
	"strconv"
	"strings"
	"time"

	"mailminder-backend/internal/monitor/domain"
)

// IsDue reports whether the given instant falls inside one of the schedule's
// active windows. Pure predicate: no ledger or quota state is consulted.
func IsDue(s domain.Schedule, now time.Time) bool {
	switch s.Kind {
	case domain.ScheduleRecurring:
		return recurringDue(s.Recurring, now)
	case domain.ScheduleSpecificDates:
		return specificDatesDue(s.SpecificDates, now)
	case domain.ScheduleHybrid:
		// Inclusive OR. A date covered by both windows does not double-count;
		// the quota resolver decides which cap applies.
		return recurringDue(s.Recurring, now) || specificDatesDue(s.SpecificDates, now)
	}
	return false
}

func recurringDue(w *domain.RecurringWindow, now time.Time) bool {
	if w == nil {
		return false
	}
	if !containsFold(w.DaysOfWeek, now.Weekday().String()) {
		return false
	}
	return inTimeWindow(clockMinutes(now), w.StartTime, w.EndTime)
}

func specificDatesDue(w *domain.SpecificDatesWindow, now time.Time) bool {
	if w == nil {
		return false
	}
	today := now.Format("2006-01-02")
	found := false
	for _, d := range w.Dates {
		if d == today {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	return inTimeWindow(clockMinutes(now), w.StartTime, w.EndTime)
}

// inTimeWindow tests clock-time membership, inclusive on both ends.
// A window whose end is before its start wraps past midnight, so membership
// becomes t >= start OR t <= end.
func inTimeWindow(nowMin int, startTime, endTime string) bool {
	start, ok := parseClock(startTime)
	if !ok {
		return false
	}
	end, ok := parseClock(endTime)
	if !ok {
		return false
	}
	if end < start {
		return nowMin >= start || nowMin <= end
	}
	return nowMin >= start && nowMin <= end
}

// parseClock converts "HH:mm" to minutes since midnight
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
