package repository

import (
	"time"

	ledgerdomain "mailminder-backend/internal/ledger/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// checkCounterRepository implements CheckCounterRepository using GORM
type checkCounterRepository struct {
	db *gorm.DB
}

// NewCheckCounterRepository creates a new GORM-based CheckCounterRepository
func NewCheckCounterRepository(db *gorm.DB) CheckCounterRepository {
	return &checkCounterRepository{db: db}
}

// Increment is a single upsert-and-increment statement so two poll ticks
// racing on the same triple cannot lose an update or create two rows.
func (r *checkCounterRepository) Increment(userID, monitorID, periodID string, maxCount *int) (*ledgerdomain.CheckCounter, error) {
	now := time.Now()
	counter := ledgerdomain.CheckCounter{
		ID:           uuid.New().String(),
		UserID:       userID,
		MonitorID:    monitorID,
		PeriodID:     periodID,
		CurrentCount: 1,
		MaxCount:     maxCount,
		LastCheckAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "monitor_id"}, {Name: "period_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"current_count": gorm.Expr("check_counters.current_count + 1"),
			"last_check_at": now,
			"updated_at":    now,
		}),
	}).Create(&counter).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the post-increment count rather than the
	// insert candidate.
	return r.Get(userID, monitorID, periodID)
}

func (r *checkCounterRepository) Get(userID, monitorID, periodID string) (*ledgerdomain.CheckCounter, error) {
	var counter ledgerdomain.CheckCounter
	err := r.db.Where("user_id = ? AND monitor_id = ? AND period_id = ?",
		userID, monitorID, periodID).First(&counter).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}

func (r *checkCounterRepository) ResetAll(userID string) error {
	now := time.Now()
	return r.db.Model(&ledgerdomain.CheckCounter{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_count": 0,
			"last_reset_at": now,
			"updated_at":    now,
		}).Error
}

func (r *checkCounterRepository) ListByUser(userID string) ([]*ledgerdomain.CheckCounter, error) {
	var counters []*ledgerdomain.CheckCounter
	err := r.db.Where("user_id = ?", userID).
		Order("last_check_at DESC").Find(&counters).Error
	return counters, err
}
