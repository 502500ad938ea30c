package usecase

import (
	"errors"

	"mailminder-backend/internal/monitor/domain"
	"mailminder-backend/internal/monitor/repository"
	"mailminder-backend/internal/monitor/schedule"
)

// DefaultPromptTemplate is used until the user saves their own. Placeholders
// are substituted by the poller before each AI call.
const DefaultPromptTemplate = `You are my email assistant. Write a brief, polite reply to the following email.

From: {{sender_name}} <{{sender_email}}>
Subject: {{subject}}
Date: {{current_date}}

{{body}}

Reply in the same language as the email. Do not invent commitments I have not made.`

// monitorUsecase implements MonitorUsecase
type monitorUsecase struct {
	monitorRepo  repository.MonitorRepository
	settingsRepo repository.SettingsRepository
}

// NewMonitorUsecase creates a new instance of monitorUsecase
func NewMonitorUsecase(monitorRepo repository.MonitorRepository, settingsRepo repository.SettingsRepository) MonitorUsecase {
	return &monitorUsecase{
		monitorRepo:  monitorRepo,
		settingsRepo: settingsRepo,
	}
}

func (u *monitorUsecase) CreateMonitor(userID string, m *domain.Monitor) (*domain.Monitor, error) {
	if msgs := m.Validate(); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}
	m.UserID = userID
	m.IsActive = true
	m.SuppressedUntil = nil
	if m.StopAfter == "" {
		m.StopAfter = domain.StopNever
	}
	if err := u.monitorRepo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (u *monitorUsecase) UpdateMonitor(userID, monitorID string, m *domain.Monitor) (*domain.Monitor, error) {
	existing, err := u.monitorRepo.FindByID(userID, monitorID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("monitor not found")
	}
	if msgs := m.Validate(); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	existing.SenderEmail = m.SenderEmail
	existing.AccountLabel = m.AccountLabel
	existing.Keywords = m.Keywords
	existing.Schedule = m.Schedule
	existing.StopAfter = m.StopAfter
	// Editing the schedule moves accounting to a new bucket, so any
	// stop-after-response suppression from the old shape is cleared.
	existing.SuppressedUntil = nil

	if err := u.monitorRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (u *monitorUsecase) DeleteMonitor(userID, monitorID string) error {
	return u.monitorRepo.Delete(userID, monitorID)
}

func (u *monitorUsecase) GetMonitor(userID, monitorID string) (*domain.Monitor, error) {
	m, err := u.monitorRepo.FindByID(userID, monitorID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("monitor not found")
	}
	return m, nil
}

func (u *monitorUsecase) GetMonitors(userID string) ([]*domain.Monitor, error) {
	return u.monitorRepo.FindByUserID(userID)
}

func (u *monitorUsecase) SetActive(userID, monitorID string, active bool) error {
	m, err := u.monitorRepo.FindByID(userID, monitorID)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.New("monitor not found")
	}
	return u.monitorRepo.SetActive(userID, monitorID, active)
}

func (u *monitorUsecase) Estimate(m *domain.Monitor) (*schedule.Estimate, []string) {
	if msgs := m.Validate(); len(msgs) > 0 {
		return nil, msgs
	}
	e := schedule.ForSchedule(m.Schedule)
	return &e, nil
}

func (u *monitorUsecase) GetSettings(userID string) (*domain.UserSettings, error) {
	s, err := u.settingsRepo.Get(userID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &domain.UserSettings{
			UserID:         userID,
			ServiceActive:  true,
			PromptTemplate: DefaultPromptTemplate,
		}
		if err := u.settingsRepo.Upsert(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (u *monitorUsecase) UpdateSettings(userID string, s *domain.UserSettings) (*domain.UserSettings, error) {
	s.UserID = userID
	if s.PromptTemplate == "" {
		s.PromptTemplate = DefaultPromptTemplate
	}
	if err := u.settingsRepo.Upsert(s); err != nil {
		return nil, err
	}
	return s, nil
}
