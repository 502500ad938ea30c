package repository

import (
	"errors"
	"time"

	authdomain "mailminder-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository is the credential store for connected mailbox accounts.
// The poller fetches tokens through it once per account group per tick.
type AccountRepository interface {
	Upsert(account *authdomain.EmailAccount) error
	// FindByLabel returns the account with the given label, or nil when the
	// user has no such account. The empty label is the primary account.
	FindByLabel(userID, label string) (*authdomain.EmailAccount, error)
	FindByUserID(userID string) ([]*authdomain.EmailAccount, error)
	UpdateTokens(userID, label, accessToken, refreshToken string, expiry *time.Time) error
	Delete(userID, label string) error
}

// accountRepository implements AccountRepository using GORM
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new GORM-based AccountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Upsert(account *authdomain.EmailAccount) error {
	now := time.Now()
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "label"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"address", "provider", "access_token", "refresh_token",
			"token_expiry", "imap_host", "smtp_host", "imap_password", "updated_at",
		}),
	}).Create(account).Error
}

func (r *accountRepository) FindByLabel(userID, label string) (*authdomain.EmailAccount, error) {
	var account authdomain.EmailAccount
	err := r.db.Where("user_id = ? AND label = ?", userID, label).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByUserID(userID string) ([]*authdomain.EmailAccount, error) {
	var accounts []*authdomain.EmailAccount
	err := r.db.Where("user_id = ?", userID).Order("label ASC").Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) UpdateTokens(userID, label, accessToken, refreshToken string, expiry *time.Time) error {
	updates := map[string]interface{}{
		"access_token": accessToken,
		"updated_at":   time.Now(),
	}
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	if expiry != nil {
		updates["token_expiry"] = expiry
	}
	return r.db.Model(&authdomain.EmailAccount{}).
		Where("user_id = ? AND label = ?", userID, label).
		Updates(updates).Error
}

func (r *accountRepository) Delete(userID, label string) error {
	return r.db.Where("user_id = ? AND label = ?", userID, label).
		Delete(&authdomain.EmailAccount{}).Error
}
