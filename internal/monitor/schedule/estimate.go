package schedule

import "mailminder-backend/internal/monitor/domain"

// Estimate is the expected check volume for a schedule, derived purely from
// window arithmetic. Display and sanity checking only; the poller enforces
// quotas through the ledger, never through these numbers.
type Estimate struct {
	ChecksPerDay  int  `json:"checks_per_day"`  // recurring part, per scheduled day
	ChecksPerWeek int  `json:"checks_per_week"` // recurring part, across the week
	PerDate       int  `json:"per_date"`        // specific-dates part, per listed date
	TotalChecks   int  `json:"total_checks"`    // specific-dates part, across all dates
	Unlimited     bool `json:"unlimited"`       // true when any sub-window has no cap
}

// ChecksInWindow counts interval slots in a start..end window. A window whose
// raw duration is negative crosses midnight, so 24h is added before dividing.
func ChecksInWindow(startTime, endTime string, intervalMinutes int) int {
	if intervalMinutes <= 0 {
		return 0
	}
	start, ok := parseClock(startTime)
	if !ok {
		return 0
	}
	end, ok := parseClock(endTime)
	if !ok {
		return 0
	}
	duration := end - start
	if duration < 0 {
		duration += 24 * 60
	}
	return duration / intervalMinutes
}

// ForSchedule computes the estimate for a schedule. Hybrid schedules sum both
// sub-estimates.
func ForSchedule(s domain.Schedule) Estimate {
	var e Estimate
	if s.Recurring != nil && (s.Kind == domain.ScheduleRecurring || s.Kind == domain.ScheduleHybrid) {
		w := s.Recurring
		perDay := ChecksInWindow(w.StartTime, w.EndTime, w.IntervalMinutes)
		if w.MaxChecksPerDay != nil && *w.MaxChecksPerDay < perDay {
			perDay = *w.MaxChecksPerDay
		}
		e.ChecksPerDay = perDay
		e.ChecksPerWeek = perDay * len(w.DaysOfWeek)
		if w.MaxChecksPerDay == nil {
			e.Unlimited = true
		}
	}
	if s.SpecificDates != nil && (s.Kind == domain.ScheduleSpecificDates || s.Kind == domain.ScheduleHybrid) {
		w := s.SpecificDates
		perDate := ChecksInWindow(w.StartTime, w.EndTime, w.IntervalMinutes)
		if w.MaxChecksPerDate != nil && *w.MaxChecksPerDate < perDate {
			perDate = *w.MaxChecksPerDate
		}
		e.PerDate = perDate
		e.TotalChecks = perDate * len(w.Dates)
		if w.MaxChecksPerDate == nil {
			e.Unlimited = true
		}
	}
	return e
}
