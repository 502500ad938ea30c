package usecase

import (
	"mailminder-backend/internal/monitor/domain"
	"mailminder-backend/internal/monitor/schedule"
)

// MonitorUsecase defines the interface for monitor configuration logic
type MonitorUsecase interface {
	// CreateMonitor validates and persists a new monitor
	CreateMonitor(userID string, m *domain.Monitor) (*domain.Monitor, error)

	// UpdateMonitor validates and replaces an existing monitor (with ownership check)
	UpdateMonitor(userID, monitorID string, m *domain.Monitor) (*domain.Monitor, error)

	// DeleteMonitor removes a monitor
	DeleteMonitor(userID, monitorID string) error

	// GetMonitor retrieves one monitor (with ownership check)
	GetMonitor(userID, monitorID string) (*domain.Monitor, error)

	// GetMonitors retrieves all monitors for a user
	GetMonitors(userID string) ([]*domain.Monitor, error)

	// SetActive flips the per-monitor pause flag; the poller picks it up on
	// its next tick without a config reload
	SetActive(userID, monitorID string, active bool) error

	// Estimate validates a schedule and computes its expected check volume
	Estimate(m *domain.Monitor) (*schedule.Estimate, []string)

	// GetSettings returns the user's service settings, creating defaults on
	// first access
	GetSettings(userID string) (*domain.UserSettings, error)

	// UpdateSettings persists the user's service settings
	UpdateSettings(userID string, s *domain.UserSettings) (*domain.UserSettings, error)
}

// ValidationError carries the accumulated rule violations for an invalid monitor
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "invalid monitor"
	}
	return e.Messages[0]
}
