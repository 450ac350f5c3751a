package repository

import (
	"github.com/memberhive/memberhive/app/models"
	"gorm.io/gorm"
)

// historyRepository implements the HistoryRepository interface. Insert-only:
// history rows are never updated or deleted.
type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository instance
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(entry *models.HistoryEntry) error {
	return r.db.Create(entry).Error
}

func (r *historyRepository) ExistsTxn(userID uint, planID, txnID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.HistoryEntry{}).
		Where("user_id = ? AND plan_id = ? AND txn_id = ?", userID, planID, txnID).
		Count(&count).Error
	return count > 0, err
}

func (r *historyRepository) ListByUser(userID uint) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := r.db.Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Find(&entries).Error
	return entries, err
}

func (r *historyRepository) ListByPlan(planID string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := r.db.Where("plan_id = ?", planID).
		Order("purchase_date DESC").
		Find(&entries).Error
	return entries, err
}

// referralRepository implements the ReferralRepository interface. Insert-only.
type referralRepository struct {
	db *gorm.DB
}

// NewReferralRepository creates a new referral repository instance
func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Create(entry *models.Referral) error {
	return r.db.Create(entry).Error
}

func (r *referralRepository) ListByReferrer(referrerID uint) ([]models.Referral, error) {
	var entries []models.Referral
	err := r.db.Where("referrer_id = ?", referrerID).
		Order("purchase_date DESC").
		Find(&entries).Error
	return entries, err
}
