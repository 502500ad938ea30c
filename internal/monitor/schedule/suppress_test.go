package schedule

import (
	"testing"
	"time"

	"mailminder-backend/internal/monitor/domain"
)

func TestWindowEndSameDay(t *testing.T) {
	s := recurring([]string{"tuesday"}, "09:00", "17:00", 30)
	got := WindowEnd(s, at(10, 30))
	want := time.Date(2025, 12, 23, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WindowEnd = %v, want %v", got, want)
	}
}

func TestWindowEndWrapsPastMidnight(t *testing.T) {
	s := recurring([]string{"tuesday"}, "22:00", "02:00", 30)

	// Before midnight the window closes tomorrow at 02:00
	got := WindowEnd(s, at(23, 0))
	want := time.Date(2025, 12, 24, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WindowEnd before midnight = %v, want %v", got, want)
	}

	// After midnight the close is today at 02:00
	got = WindowEnd(s, time.Date(2025, 12, 23, 1, 0, 0, 0, time.UTC))
	want = time.Date(2025, 12, 23, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WindowEnd after midnight = %v, want %v", got, want)
	}
}

func TestWindowEndHybridTakesLaterClose(t *testing.T) {
	s := domain.Schedule{
		Kind: domain.ScheduleHybrid,
		Recurring: &domain.RecurringWindow{
			DaysOfWeek:      []string{"tuesday"},
			StartTime:       "09:00",
			EndTime:         "12:00",
			IntervalMinutes: 30,
		},
		SpecificDates: &domain.SpecificDatesWindow{
			Dates:           []string{"2025-12-23"},
			StartTime:       "10:00",
			EndTime:         "18:00",
			IntervalMinutes: 30,
		},
	}
	got := WindowEnd(s, at(11, 0))
	want := time.Date(2025, 12, 23, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WindowEnd = %v, want %v", got, want)
	}
}

func TestNextPeriodStartSkipsUnscheduledDays(t *testing.T) {
	// Tuesday now; next scheduled day is Friday
	s := recurring([]string{"tuesday", "friday"}, "09:00", "17:00", 30)
	got := NextPeriodStart(s, at(10, 0))
	want := time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextPeriodStart = %v, want %v", got, want)
	}
}

func TestNextPeriodStartSpecificDates(t *testing.T) {
	s := domain.Schedule{
		Kind: domain.ScheduleSpecificDates,
		SpecificDates: &domain.SpecificDatesWindow{
			Dates:           []string{"2025-12-23", "2025-12-30"},
			StartTime:       "09:00",
			EndTime:         "17:00",
			IntervalMinutes: 30,
		},
	}
	got := NextPeriodStart(s, at(10, 0))
	want := time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextPeriodStart = %v, want %v", got, want)
	}
}

func TestNextPeriodStartExhaustedDates(t *testing.T) {
	s := domain.Schedule{
		Kind: domain.ScheduleSpecificDates,
		SpecificDates: &domain.SpecificDatesWindow{
			Dates:           []string{"2025-12-23"},
			StartTime:       "09:00",
			EndTime:         "17:00",
			IntervalMinutes: 30,
		},
	}
	got := NextPeriodStart(s, at(10, 0))
	want := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextPeriodStart = %v, want horizon end %v", got, want)
	}
}
