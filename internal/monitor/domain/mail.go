package domain

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// TokenUpdateFunc is invoked when a mail provider refreshes an OAuth token,
// so the new token can be persisted before the old one stops working
type TokenUpdateFunc func(token *oauth2.Token) error

// MailCredentials carries whatever a provider needs to act on one mailbox
// account. Gmail accounts use the OAuth fields; IMAP accounts use host and
// password fields.
type MailCredentials struct {
	Address      string
	AccessToken  string
	RefreshToken string
	IMAPHost     string
	SMTPHost     string
	Password     string
}

// MailQuery filters unread mail by sender and optional subject keywords.
// An empty keyword set matches all subjects.
type MailQuery struct {
	FromSender string
	Keywords   []string
}

// MailMessage is one inbound message. ListUnread may return summaries
// without a body; GetFull always populates it.
type MailMessage struct {
	ID         string
	ThreadID   string
	From       string
	FromName   string
	Subject    string
	Body       string
	ReceivedAt time.Time
}

// MailProvider is the transport behind one mailbox account kind
type MailProvider interface {
	ListUnread(ctx context.Context, creds MailCredentials, q MailQuery, onTokenRefresh TokenUpdateFunc) ([]*MailMessage, error)
	GetFull(ctx context.Context, creds MailCredentials, messageID string, onTokenRefresh TokenUpdateFunc) (*MailMessage, error)
	// SendReply sends body threaded to the original message
	SendReply(ctx context.Context, creds MailCredentials, original *MailMessage, body string, onTokenRefresh TokenUpdateFunc) error
	MarkRead(ctx context.Context, creds MailCredentials, messageID string, onTokenRefresh TokenUpdateFunc) error
}

// CalendarEvent is one upcoming or to-be-created calendar entry
type CalendarEvent struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// CalendarProvider is the optional calendar transport, only invoked when the
// prompt template references calendar events or the AI requests an event
type CalendarProvider interface {
	ListUpcoming(ctx context.Context, creds MailCredentials, calendarID string, daysAhead int, onTokenRefresh TokenUpdateFunc) ([]*CalendarEvent, error)
	CreateEvent(ctx context.Context, creds MailCredentials, calendarID string, event *CalendarEvent, onTokenRefresh TokenUpdateFunc) error
}
