package repository

import (
	"time"

	"mailminder-backend/internal/monitor/domain"
)

// MonitorRepository is the configuration store for monitors. The poller
// re-reads active flags through it every tick, so implementations must not
// cache rows.
type MonitorRepository interface {
	Create(m *domain.Monitor) error
	Update(m *domain.Monitor) error
	Delete(userID, id string) error
	FindByID(userID, id string) (*domain.Monitor, error)
	FindByUserID(userID string) ([]*domain.Monitor, error)
	// FindActiveByUserID returns only monitors whose IsActive flag is set,
	// read fresh from storage.
	FindActiveByUserID(userID string) ([]*domain.Monitor, error)
	SetActive(userID, id string, active bool) error
	// Suppress stamps the stop-after-response suppression boundary.
	Suppress(userID, id string, until *time.Time) error
}

// SettingsRepository stores per-user service configuration
type SettingsRepository interface {
	Get(userID string) (*domain.UserSettings, error)
	Upsert(s *domain.UserSettings) error
	// ListUserIDs returns every user with stored settings, for the poller
	// to walk each tick.
	ListUserIDs() ([]string, error)
}
