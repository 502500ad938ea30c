package domain

import "time"

// ScheduleKind selects which window definitions a monitor carries
type ScheduleKind string

const (
	ScheduleRecurring     ScheduleKind = "recurring"
	ScheduleSpecificDates ScheduleKind = "specific_dates"
	ScheduleHybrid        ScheduleKind = "hybrid"
)

// StopAfterResponse governs whether a monitor deactivates itself after a
// successful automated reply
type StopAfterResponse string

const (
	StopNever        StopAfterResponse = "never"
	StopRestOfDay    StopAfterResponse = "rest_of_day"
	StopRestOfWindow StopAfterResponse = "rest_of_window"
	StopNextPeriod   StopAfterResponse = "next_period"
)

// RecurringWindow is a weekly repeating check window
type RecurringWindow struct {
	DaysOfWeek      []string `json:"days_of_week"` // lowercase weekday names
	StartTime       string   `json:"start_time"`   // HH:mm
	EndTime         string   `json:"end_time"`     // HH:mm, may be before StartTime (crosses midnight)
	IntervalMinutes int      `json:"interval_minutes"`
	MaxChecksPerDay *int     `json:"max_checks_per_day,omitempty"` // nil = unlimited
}

// SpecificDatesWindow is a check window on an explicit list of calendar dates
type SpecificDatesWindow struct {
	Dates            []string `json:"dates"`      // YYYY-MM-DD
	StartTime        string   `json:"start_time"` // HH:mm
	EndTime          string   `json:"end_time"`   // HH:mm
	IntervalMinutes  int      `json:"interval_minutes"`
	MaxChecksPerDate *int     `json:"max_checks_per_date,omitempty"` // nil = unlimited
}

// Schedule is the tagged union over the three schedule kinds. Only the
// windows matching Kind are populated; both may be set for hybrid.
type Schedule struct {
	Kind          ScheduleKind         `json:"kind"`
	Recurring     *RecurringWindow     `json:"recurring,omitempty"`
	SpecificDates *SpecificDatesWindow `json:"specific_dates,omitempty"`
}

// Monitor is one sender+schedule configuration to poll
type Monitor struct {
	ID               string            `json:"id" gorm:"primaryKey"`
	UserID           string            `json:"user_id" gorm:"index;not null"`
	SenderEmail      string            `json:"sender_email" gorm:"not null"`
	AccountLabel     string            `json:"account_label,omitempty"` // which mailbox account reads this; empty = primary
	Keywords         []string          `json:"keywords" gorm:"serializer:json"`
	Schedule         Schedule          `json:"schedule" gorm:"serializer:json"`
	StopAfter        StopAfterResponse `json:"stop_after_response" gorm:"default:never"`
	IsActive         bool              `json:"is_active" gorm:"default:true"`
	SuppressedUntil  *time.Time        `json:"suppressed_until,omitempty"` // stop-after-response suppression boundary
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// UserSettings holds the per-user service configuration the poller reads
// fresh every tick
type UserSettings struct {
	UserID         string    `json:"user_id" gorm:"primaryKey"`
	ServiceActive  bool      `json:"service_active" gorm:"default:true"`
	PromptTemplate string    `json:"prompt_template"`
	CalendarID     string    `json:"calendar_id,omitempty"`
	Timezone       string    `json:"timezone,omitempty"` // IANA name; empty = server local
	ReplySignature string    `json:"reply_signature,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Location resolves the user's timezone, falling back to server local time
func (s *UserSettings) Location() *time.Location {
	if s.Timezone != "" {
		if loc, err := time.LoadLocation(s.Timezone); err == nil {
			return loc
		}
	}
	return time.Local
}
