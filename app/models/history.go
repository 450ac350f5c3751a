package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntry is the append-only record of one purchase or renewal event.
// Rows are never updated or deleted.
type HistoryEntry struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PlanID       string          `gorm:"type:varchar(128);not null;index" json:"plan_id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	TxnID        string          `gorm:"type:varchar(255);default:'';index" json:"txn_id"`
	PurchaseDate time.Time       `gorm:"not null" json:"purchase_date"`
	Expiration   time.Time       `gorm:"type:date;not null" json:"expiration"`
	PricePaid    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"price_paid"`
	Notes        string          `gorm:"type:text" json:"notes,omitempty"`
}
