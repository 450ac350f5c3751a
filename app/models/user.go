package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	STATUS_ACTIVE   = "active"
	STATUS_DISABLED = "disabled"
)

// MinValidUserID is the lowest user id that represents a real subscriber
// account. IDs below it (0 = none, 1 = anonymous) never hold subscriptions.
const MinValidUserID = 2

// User is a subscriber account. Payment notifications resolve the payer to
// one of these rows, either by explicit id or by email; the referral token
// identifies the user in referral links.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=3,max=150"`
	Email         string    `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Status        string    `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active disabled"`
	ReferralToken string    `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()
	return v.Struct(u)
}

// NewReferralToken returns a fresh token for referral links.
func NewReferralToken() string {
	return uuid.NewString()
}
