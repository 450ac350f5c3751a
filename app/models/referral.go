package models

import "time"

// Referral links a referring user to the purchased subscription that earned
// them a bonus. Append-only.
type Referral struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReferrerID     uint      `gorm:"not null;index" json:"referrer_id"`
	SubscriptionID uint      `gorm:"not null;index" json:"subscription_id"`
	PurchaseDate   time.Time `gorm:"not null" json:"purchase_date"`
}
