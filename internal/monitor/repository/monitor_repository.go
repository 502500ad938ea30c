package repository

import (
	"time"

	"mailminder-backend/internal/monitor/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormMonitorRepository implements MonitorRepository using GORM
type gormMonitorRepository struct {
	db *gorm.DB
}

// NewMonitorRepository creates a new GORM-based MonitorRepository
func NewMonitorRepository(db *gorm.DB) MonitorRepository {
	return &gormMonitorRepository{db: db}
}

func (r *gormMonitorRepository) Create(m *domain.Monitor) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	return r.db.Create(m).Error
}

func (r *gormMonitorRepository) Update(m *domain.Monitor) error {
	m.UpdatedAt = time.Now()
	return r.db.Save(m).Error
}

func (r *gormMonitorRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ?", userID).Delete(&domain.Monitor{}, "id = ?", id).Error
}

func (r *gormMonitorRepository) FindByID(userID, id string) (*domain.Monitor, error) {
	var m domain.Monitor
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormMonitorRepository) FindByUserID(userID string) ([]*domain.Monitor, error) {
	var monitors []*domain.Monitor
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&monitors).Error
	return monitors, err
}

func (r *gormMonitorRepository) FindActiveByUserID(userID string) ([]*domain.Monitor, error) {
	var monitors []*domain.Monitor
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").Find(&monitors).Error
	return monitors, err
}

func (r *gormMonitorRepository) SetActive(userID, id string, active bool) error {
	return r.db.Model(&domain.Monitor{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		}).Error
}

func (r *gormMonitorRepository) Suppress(userID, id string, until *time.Time) error {
	return r.db.Model(&domain.Monitor{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			"suppressed_until": until,
			"updated_at":       time.Now(),
		}).Error
}
