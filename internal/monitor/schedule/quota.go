package schedule

import "mailminder-backend/internal/monitor/domain"

// MaxChecks resolves the check quota for a monitor in the given period.
// The second return value reports an unlimited quota, which is distinct from
// a finite cap of any size; a cap of 0 means "never check".
func MaxChecks(m *domain.Monitor, periodID string) (int, bool) {
	s := m.Schedule
	switch s.Kind {
	case domain.ScheduleRecurring:
		return capOf(nil, s.Recurring)
	case domain.ScheduleSpecificDates:
		return capOf(s.SpecificDates, nil)
	case domain.ScheduleHybrid:
		// A period matching one of the listed dates is governed by the
		// specific-dates cap; any other period falls back to the recurring cap.
		if s.SpecificDates != nil {
			for _, d := range s.SpecificDates.Dates {
				if d == periodID {
					return capOf(s.SpecificDates, nil)
				}
			}
		}
		return capOf(nil, s.Recurring)
	}
	return 0, true
}

func capOf(sd *domain.SpecificDatesWindow, r *domain.RecurringWindow) (int, bool) {
	if sd != nil {
		if sd.MaxChecksPerDate == nil {
			return 0, true
		}
		return *sd.MaxChecksPerDate, false
	}
	if r != nil {
		if r.MaxChecksPerDay == nil {
			return 0, true
		}
		return *r.MaxChecksPerDay, false
	}
	return 0, true
}
