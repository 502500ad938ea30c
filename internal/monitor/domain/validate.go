package domain

import "regexp"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks a monitor's structural invariants before it is persisted.
// All rules are checked independently; the returned slice holds every
// violation, not just the first. An empty slice means the monitor is valid.
//
// A window whose end time is before its start time is accepted: the evaluator
// treats it as crossing midnight, so overnight schedules are a supported
// configuration rather than an error.
func (m *Monitor) Validate() []string {
	var errs []string

	if !emailPattern.MatchString(m.SenderEmail) {
		errs = append(errs, "sender email is not a valid email address")
	}

	s := m.Schedule
	switch s.Kind {
	case ScheduleRecurring:
		if s.Recurring == nil {
			errs = append(errs, "recurring schedule requires a recurring window")
		} else {
			errs = append(errs, validateRecurring(s.Recurring)...)
		}
	case ScheduleSpecificDates:
		if s.SpecificDates == nil {
			errs = append(errs, "specific-dates schedule requires a dates window")
		} else {
			errs = append(errs, validateSpecificDates(s.SpecificDates)...)
		}
	case ScheduleHybrid:
		if s.Recurring == nil && s.SpecificDates == nil {
			errs = append(errs, "hybrid schedule requires at least one of a recurring or dates window")
		}
		if s.Recurring != nil {
			errs = append(errs, validateRecurring(s.Recurring)...)
		}
		if s.SpecificDates != nil {
			errs = append(errs, validateSpecificDates(s.SpecificDates)...)
		}
	default:
		errs = append(errs, "schedule kind must be recurring, specific_dates or hybrid")
	}

	return errs
}

func validateRecurring(w *RecurringWindow) []string {
	var errs []string
	if len(w.DaysOfWeek) == 0 {
		errs = append(errs, "recurring window requires at least one day of the week")
	}
	if w.IntervalMinutes < 1 {
		errs = append(errs, "check interval must be at least 1 minute")
	}
	if w.MaxChecksPerDay != nil && *w.MaxChecksPerDay < 1 {
		errs = append(errs, "max checks per day must be at least 1")
	}
	errs = append(errs, validateClockPair(w.StartTime, w.EndTime)...)
	return errs
}

func validateSpecificDates(w *SpecificDatesWindow) []string {
	var errs []string
	if len(w.Dates) == 0 {
		errs = append(errs, "specific-dates window requires at least one date")
	}
	if w.IntervalMinutes < 1 {
		errs = append(errs, "check interval must be at least 1 minute")
	}
	if w.MaxChecksPerDate != nil && *w.MaxChecksPerDate < 1 {
		errs = append(errs, "max checks per date must be at least 1")
	}
	errs = append(errs, validateClockPair(w.StartTime, w.EndTime)...)
	return errs
}

var clockPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

func validateClockPair(start, end string) []string {
	var errs []string
	if !clockPattern.MatchString(start) {
		errs = append(errs, "start time must be in HH:mm format")
	}
	if !clockPattern.MatchString(end) {
		errs = append(errs, "end time must be in HH:mm format")
	}
	return errs
}
