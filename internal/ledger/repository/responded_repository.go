package repository

import (
	"time"

	ledgerdomain "mailminder-backend/internal/ledger/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// respondedEmailRepository implements RespondedEmailRepository using GORM
type respondedEmailRepository struct {
	db *gorm.DB
}

// NewRespondedEmailRepository creates a new GORM-based RespondedEmailRepository
func NewRespondedEmailRepository(db *gorm.DB) RespondedEmailRepository {
	return &respondedEmailRepository{db: db}
}

func (r *respondedEmailRepository) IsResponded(userID, emailID string) (bool, error) {
	var marker ledgerdomain.RespondedEmail
	err := r.db.Where("user_id = ? AND email_id = ?", userID, emailID).First(&marker).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkResponded checks and inserts in one query. A row that already exists is
// reported as already-responded, never surfaced as a conflict error.
func (r *respondedEmailRepository) MarkResponded(userID, emailID string) (bool, error) {
	now := time.Now()
	var marker ledgerdomain.RespondedEmail
	result := r.db.Where("user_id = ? AND email_id = ?", userID, emailID).
		FirstOrCreate(&marker, ledgerdomain.RespondedEmail{
			ID:          uuid.New().String(),
			UserID:      userID,
			EmailID:     emailID,
			RespondedAt: now,
			CreatedAt:   now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 0, nil
}
