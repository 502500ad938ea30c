package repository

import (
	ledgerdomain "mailminder-backend/internal/ledger/domain"
)

// CheckCounterRepository is the storage surface behind the check-counter
// ledger. Increment must be atomic under concurrent callers for the same
// (user, monitor, period) triple.
type CheckCounterRepository interface {
	// Increment bumps the counter for the triple, creating the row with
	// CurrentCount = 1 and the given quota snapshot if it does not exist yet.
	Increment(userID, monitorID, periodID string, maxCount *int) (*ledgerdomain.CheckCounter, error)
	// Get returns the current row, or nil (not an error) if no check has
	// happened in the period yet.
	Get(userID, monitorID, periodID string) (*ledgerdomain.CheckCounter, error)
	// ResetAll zeroes every counter for the user and stamps LastResetAt.
	// Rows are kept so quota snapshots and identifiers stay auditable.
	ResetAll(userID string) error
	ListByUser(userID string) ([]*ledgerdomain.CheckCounter, error)
}

// RespondedEmailRepository records which inbound messages already received an
// automated reply. Inserts are append-only; a duplicate insert is success.
type RespondedEmailRepository interface {
	IsResponded(userID, emailID string) (bool, error)
	// MarkResponded inserts the marker and reports whether it already existed.
	MarkResponded(userID, emailID string) (alreadyResponded bool, err error)
}

// ActivityLogRepository is the append-only audit sink for check attempts
type ActivityLogRepository interface {
	Append(entry *ledgerdomain.ActivityLogEntry) error
	ListByUser(userID string, limit, offset int) ([]*ledgerdomain.ActivityLogEntry, int64, error)
}
