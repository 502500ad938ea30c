package schedule

import (
	"testing"
	"time"

	"mailminder-backend/internal/monitor/domain"
)

func TestMonitorIDStable(t *testing.T) {
	s := recurring([]string{"monday", "friday"}, "09:00", "17:00", 15)

	a := MonitorID("boss@co.com", s)
	b := MonitorID("boss@co.com", s)
	if a != b {
		t.Errorf("same inputs produced different ids: %s vs %s", a, b)
	}
}

func TestMonitorIDOrderIndependent(t *testing.T) {
	a := MonitorID("boss@co.com", recurring([]string{"monday", "friday"}, "09:00", "17:00", 15))
	b := MonitorID("boss@co.com", recurring([]string{"friday", "monday"}, "09:00", "17:00", 15))
	if a != b {
		t.Error("day-set ordering changed the monitor id")
	}
}

func TestMonitorIDChangesWithInputs(t *testing.T) {
	base := recurring([]string{"monday"}, "09:00", "17:00", 15)
	baseID := MonitorID("boss@co.com", base)

	if MonitorID("other@co.com", base) == baseID {
		t.Error("different sender should produce a different id")
	}
	if MonitorID("boss@co.com", recurring([]string{"tuesday"}, "09:00", "17:00", 15)) == baseID {
		t.Error("different day set should produce a different id")
	}
	if MonitorID("boss@co.com", recurring([]string{"monday"}, "09:00", "17:00", 30)) == baseID {
		t.Error("different interval should produce a different id")
	}

	capped := recurring([]string{"monday"}, "09:00", "17:00", 15)
	five := 5
	capped.Recurring.MaxChecksPerDay = &five
	if MonitorID("boss@co.com", capped) == baseID {
		t.Error("adding a cap should produce a different id")
	}
}

func TestMonitorIDNormalizesCase(t *testing.T) {
	a := MonitorID("Boss@Co.com", recurring([]string{"Monday"}, "09:00", "17:00", 15))
	b := MonitorID("boss@co.com", recurring([]string{"monday"}, "09:00", "17:00", 15))
	if a != b {
		t.Error("sender and day-name case changed the monitor id")
	}
}

func TestPeriodIdentifiers(t *testing.T) {
	// 2025-12-23 is a Tuesday in ISO week 52
	ts := time.Date(2025, 12, 23, 10, 0, 0, 0, time.UTC)

	if got := DayPeriod(ts); got != "2025-12-23" {
		t.Errorf("DayPeriod = %q", got)
	}
	if got := WeekPeriod(ts); got != "2025-W52-tuesday" {
		t.Errorf("WeekPeriod = %q", got)
	}

	if got := PeriodFor(domain.ScheduleRecurring, ts); got != "2025-W52-tuesday" {
		t.Errorf("PeriodFor(recurring) = %q", got)
	}
	if got := PeriodFor(domain.ScheduleHybrid, ts); got != "2025-12-23" {
		t.Errorf("PeriodFor(hybrid) = %q", got)
	}
	if got := PeriodFor(domain.ScheduleSpecificDates, ts); got != "2025-12-23" {
		t.Errorf("PeriodFor(specific_dates) = %q", got)
	}
}

func TestWeekPeriodDistinguishesWeeks(t *testing.T) {
	monday1 := time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC)
	monday2 := time.Date(2025, 12, 22, 9, 0, 0, 0, time.UTC)
	if WeekPeriod(monday1) == WeekPeriod(monday2) {
		t.Error("successive Mondays should bucket into distinct week periods")
	}
}
