package models

import "time"

// Subscription lifecycle states.
const (
	SubscriptionStatusEnabled  = "enabled"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// Subscription is the per-user entitlement ledger row for one plan. The
// composite unique index makes a purchase for the same (user, plan) pair an
// upsert rather than a second row.
type Subscription struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:ux_subscriptions_user_plan,unique,priority:1;index" json:"user_id"`
	PlanID     string    `gorm:"type:varchar(128);not null;index:ux_subscriptions_user_plan,unique,priority:2;index" json:"plan_id"`
	Expiration time.Time `gorm:"type:date;not null;index" json:"expiration"`
	Status     string    `gorm:"type:varchar(16);not null;default:'enabled';index" json:"status"`
	Notified   bool      `gorm:"not null;default:false" json:"notified"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the subscription still grants entitlement.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusEnabled
}
