package repository

import (
	"time"

	"mailminder-backend/internal/monitor/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormSettingsRepository implements SettingsRepository using GORM
type gormSettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new GORM-based SettingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &gormSettingsRepository{db: db}
}

func (r *gormSettingsRepository) Get(userID string) (*domain.UserSettings, error) {
	var s domain.UserSettings
	err := r.db.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormSettingsRepository) Upsert(s *domain.UserSettings) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"service_active", "prompt_template", "calendar_id",
			"timezone", "reply_signature", "updated_at",
		}),
	}).Create(s).Error
}

func (r *gormSettingsRepository) ListUserIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.UserSettings{}).Pluck("user_id", &ids).Error
	return ids, err
}
