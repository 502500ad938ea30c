package schedule

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"mailminder-backend/internal/monitor/domain"
)

// MonitorID derives the stable accounting bucket for a sender+schedule pair.
// The hash is order-independent on set-valued fields, so two monitors with
// the same sender and schedule shape share a bucket, and any schedule edit
// moves counts to a fresh bucket instead of reinterpreting old ones under a
// changed quota.
func MonitorID(senderEmail string, s domain.Schedule) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(senderEmail)))
	b.WriteByte('|')
	b.WriteString(string(s.Kind))

	if s.Recurring != nil {
		days := normalizeSet(s.Recurring.DaysOfWeek)
		fmt.Fprintf(&b, "|r:%s:%s-%s:%d:%s",
			strings.Join(days, ","),
			s.Recurring.StartTime, s.Recurring.EndTime,
			s.Recurring.IntervalMinutes,
			capString(s.Recurring.MaxChecksPerDay))
	}
	if s.SpecificDates != nil {
		dates := normalizeSet(s.SpecificDates.Dates)
		fmt.Fprintf(&b, "|d:%s:%s-%s:%d:%s",
			strings.Join(dates, ","),
			s.SpecificDates.StartTime, s.SpecificDates.EndTime,
			s.SpecificDates.IntervalMinutes,
			capString(s.SpecificDates.MaxChecksPerDate))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// DayPeriod is the day-scoped period identifier (YYYY-MM-DD, local calendar)
func DayPeriod(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekPeriod is the ISO-week period identifier (YYYY-Www-weekday), used to
// bucket recurring-schedule checks so that e.g. successive Mondays land in
// distinct buckets
func WeekPeriod(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d-%s", year, week, strings.ToLower(t.Weekday().String()))
}

// PeriodFor picks the period form matching the schedule kind. Writers and
// readers of the ledger must use the same form for the same monitor.
// Hybrid and specific-date schedules use the day form so the quota resolver
// can match the period against the configured date list.
func PeriodFor(kind domain.ScheduleKind, t time.Time) string {
	if kind == domain.ScheduleRecurring {
		return WeekPeriod(t)
	}
	return DayPeriod(t)
}

func normalizeSet(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	sort.Strings(out)
	return out
}

func capString(n *int) string {
	if n == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%d", *n)
}
