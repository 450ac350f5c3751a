package repository

import (
	"time"

	"github.com/memberhive/memberhive/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByUserAndPlan(userID uint, planID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ? AND plan_id = ?", userID, planID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert relies on the unique (user_id, plan_id) index: two concurrent
// renewals for the same pair converge on one row, the later-computed
// expiration winning.
func (r *subscriptionRepository) Upsert(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "plan_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"expiration",
			"status",
			"notified",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("user_id = ? AND plan_id = ?", sub.UserID, sub.PlanID).
		First(sub).Error
}

func (r *subscriptionRepository) UpdateByID(sub *models.Subscription) error {
	return r.db.Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"plan_id":    sub.PlanID,
			"expiration": sub.Expiration,
			"status":     sub.Status,
			"notified":   sub.Notified,
		}).Error
}

func (r *subscriptionRepository) ListByUser(userID uint, statuses ...string) ([]models.Subscription, error) {
	var subs []models.Subscription
	q := r.db.Where("user_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("expiration DESC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) MostRecentForUser(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("expiration DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListEnabledExpiredBefore(cutoff time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("status = ? AND expiration < ?", models.SubscriptionStatusEnabled, cutoff).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) ListUnnotifiedExpiringBefore(cutoff time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("status = ? AND notified = ? AND expiration < ?",
		models.SubscriptionStatusEnabled, false, cutoff).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) SetNotified(id uint, notified bool) error {
	return r.db.Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("notified", notified).Error
}

func (r *subscriptionRepository) Delete(id uint) error {
	return r.db.Delete(&models.Subscription{}, id).Error
}
