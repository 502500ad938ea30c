package schedule

import (
	"testing"

	"mailminder-backend/internal/monitor/domain"
)

func TestMaxChecksRecurring(t *testing.T) {
	m := &domain.Monitor{Schedule: recurring([]string{"monday"}, "09:00", "17:00", 15)}

	if _, unlimited := MaxChecks(m, "2025-W52-monday"); !unlimited {
		t.Error("no cap set: expected unlimited quota")
	}

	thirty := 30
	m.Schedule.Recurring.MaxChecksPerDay = &thirty
	max, unlimited := MaxChecks(m, "2025-W52-monday")
	if unlimited || max != 30 {
		t.Errorf("got (%d, %v), want (30, false)", max, unlimited)
	}
}

func TestMaxChecksZeroCapIsNotUnlimited(t *testing.T) {
	zero := 0
	m := &domain.Monitor{Schedule: recurring([]string{"monday"}, "09:00", "17:00", 15)}
	m.Schedule.Recurring.MaxChecksPerDay = &zero

	max, unlimited := MaxChecks(m, "2025-W52-monday")
	if unlimited {
		t.Error("a cap of 0 means never check, not unlimited")
	}
	if max != 0 {
		t.Errorf("max = %d, want 0", max)
	}
}

func TestMaxChecksHybrid(t *testing.T) {
	two := 2
	ten := 10
	m := &domain.Monitor{Schedule: domain.Schedule{
		Kind: domain.ScheduleHybrid,
		Recurring: &domain.RecurringWindow{
			DaysOfWeek:      []string{"monday"},
			StartTime:       "09:00",
			EndTime:         "17:00",
			IntervalMinutes: 15,
			MaxChecksPerDay: &ten,
		},
		SpecificDates: &domain.SpecificDatesWindow{
			Dates:            []string{"2025-12-25"},
			StartTime:        "09:00",
			EndTime:          "17:00",
			IntervalMinutes:  15,
			MaxChecksPerDate: &two,
		},
	}}

	// Period matching a listed date uses the specific-dates cap
	if max, unlimited := MaxChecks(m, "2025-12-25"); unlimited || max != 2 {
		t.Errorf("listed date: got (%d, %v), want (2, false)", max, unlimited)
	}

	// Any other period falls back to the recurring cap
	if max, unlimited := MaxChecks(m, "2025-12-22"); unlimited || max != 10 {
		t.Errorf("fallback: got (%d, %v), want (10, false)", max, unlimited)
	}

	// Each side may be unlimited independently
	m.Schedule.Recurring.MaxChecksPerDay = nil
	if _, unlimited := MaxChecks(m, "2025-12-22"); !unlimited {
		t.Error("uncapped recurring fallback should be unlimited")
	}
	if _, unlimited := MaxChecks(m, "2025-12-25"); unlimited {
		t.Error("capped specific date should stay finite")
	}
}
