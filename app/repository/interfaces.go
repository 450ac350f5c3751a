package repository

import (
	"time"

	"github.com/memberhive/memberhive/app/models"
)

// PlanRepository defines the interface for plan catalog database operations
type PlanRepository interface {
	GetByID(id string) (*models.Plan, error)
	List(enabledOnly bool) ([]models.Plan, error)
	ListAtRegistration() ([]models.Plan, error)
	Exists(id string) (bool, error)
	Create(plan *models.Plan) error
	Update(plan *models.Plan) error
	// Rename rewrites the plan id on all subscription rows referencing
	// oldID before renaming the plan row itself, in one transaction.
	Rename(oldID, newID string) error
	Delete(id string) error
	CountSubscriptions(planID string) (int64, error)
}

// SubscriptionRepository defines the interface for subscription ledger operations
type SubscriptionRepository interface {
	GetByID(id uint) (*models.Subscription, error)
	GetByUserAndPlan(userID uint, planID string) (*models.Subscription, error)
	// Upsert inserts the row or, when a row for (user_id, plan_id) already
	// exists, atomically updates it in place. sub.ID is populated after.
	Upsert(sub *models.Subscription) error
	// UpdateByID overwrites the lifecycle fields of an existing row.
	UpdateByID(sub *models.Subscription) error
	ListByUser(userID uint, statuses ...string) ([]models.Subscription, error)
	MostRecentForUser(userID uint) (*models.Subscription, error)
	// ListEnabledExpiredBefore returns enabled rows whose expiration is
	// strictly before the cutoff date.
	ListEnabledExpiredBefore(cutoff time.Time) ([]models.Subscription, error)
	// ListUnnotifiedExpiringBefore returns enabled, not-yet-notified rows
	// expiring before the cutoff date.
	ListUnnotifiedExpiringBefore(cutoff time.Time) ([]models.Subscription, error)
	SetNotified(id uint, notified bool) error
	Delete(id uint) error
}

// HistoryRepository is the append-only purchase history writer
type HistoryRepository interface {
	Create(entry *models.HistoryEntry) error
	ExistsTxn(userID uint, planID, txnID string) (bool, error)
	ListByUser(userID uint) ([]models.HistoryEntry, error)
	ListByPlan(planID string) ([]models.HistoryEntry, error)
}

// ReferralRepository is the append-only referral ledger writer
type ReferralRepository interface {
	Create(entry *models.Referral) error
	ListByReferrer(referrerID uint) ([]models.Referral, error)
}

// UserRepository defines the interface for subscriber account lookups
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByReferralToken(token string) (*models.User, error)
}
