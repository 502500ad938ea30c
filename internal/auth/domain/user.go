package domain

import "time"

type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"-"` // Never return password in JSON
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Provider  string    `json:"provider"` // "email" or "google"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EmailAccount is one connected mailbox a user's monitors can read from.
// A user may link several; monitors reference them by Label, and an empty
// label resolves to the primary account.
type EmailAccount struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"uniqueIndex:idx_account_label;not null"`
	Label        string     `json:"label" gorm:"uniqueIndex:idx_account_label"` // "" = primary
	Address      string     `json:"address"`
	Provider     string     `json:"provider"` // "gmail" or "imap"
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
	IMAPHost     string     `json:"imap_host,omitempty"`
	SMTPHost     string     `json:"smtp_host,omitempty"`
	IMAPPassword string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
