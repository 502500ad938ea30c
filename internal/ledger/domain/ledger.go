package domain

import "time"

// ActivityStatus is the outcome of one check attempt
type ActivityStatus string

const (
	StatusNewEmail     ActivityStatus = "new_email"
	StatusNoEmail      ActivityStatus = "no_email"
	StatusSent         ActivityStatus = "sent"
	StatusError        ActivityStatus = "error"
	StatusLimitReached ActivityStatus = "limit_reached"
)

// CheckCounter tracks how many checks a monitor has consumed in one
// accounting period. Rows are created lazily on the first check of a period
// and never deleted; a reset zeroes the count and stamps LastResetAt.
type CheckCounter struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"uniqueIndex:idx_counter_bucket;not null"`
	MonitorID    string     `json:"monitor_id" gorm:"uniqueIndex:idx_counter_bucket;not null"`
	PeriodID     string     `json:"period_id" gorm:"uniqueIndex:idx_counter_bucket;not null"`
	CurrentCount int        `json:"current_count"`
	MaxCount     *int       `json:"max_count,omitempty"` // quota snapshot at creation; nil = unlimited
	LastCheckAt  time.Time  `json:"last_check_at"`
	LastResetAt  *time.Time `json:"last_reset_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RespondedEmail is the write-once idempotency marker preventing a second
// automated reply to the same inbound message
type RespondedEmail struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"uniqueIndex:idx_responded_email;not null"`
	EmailID     string    `json:"email_id" gorm:"uniqueIndex:idx_responded_email;not null"`
	RespondedAt time.Time `json:"responded_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityLogEntry is an append-only audit record of one check attempt.
// Never mutated after creation.
type ActivityLogEntry struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	UserID       string         `json:"user_id" gorm:"index;not null"`
	SenderEmail  string         `json:"sender_email"`
	Status       ActivityStatus `json:"status" gorm:"index"`
	CheckNumber  int            `json:"check_number"`
	TotalAllowed *int           `json:"total_allowed,omitempty"` // nil = unlimited
	Subject      string         `json:"subject,omitempty"`
	Excerpt      string         `json:"excerpt,omitempty"`
	AIResponse   string         `json:"ai_response,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
