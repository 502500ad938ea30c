package repository

import (
	"time"

	ledgerdomain "mailminder-backend/internal/ledger/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// activityLogRepository implements ActivityLogRepository using GORM
type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new GORM-based ActivityLogRepository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Append(entry *ledgerdomain.ActivityLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

func (r *activityLogRepository) ListByUser(userID string, limit, offset int) ([]*ledgerdomain.ActivityLogEntry, int64, error) {
	var entries []*ledgerdomain.ActivityLogEntry
	var total int64

	query := r.db.Model(&ledgerdomain.ActivityLogEntry{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}
