package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Duration units a plan may be sold in. DurationFixed means the plan has a
// hard expiration date instead of a relative duration.
const (
	DurationDay   = "day"
	DurationWeek  = "week"
	DurationMonth = "month"
	DurationYear  = "year"
	DurationFixed = "fixed"
)

// Plan is a purchasable subscription offering.
type Plan struct {
	ID                string           `gorm:"primaryKey;type:varchar(128)" json:"id"`
	Name              string           `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Description       string           `gorm:"type:text" json:"description"`
	Price             decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0.00" json:"price"`
	Duration          int              `gorm:"not null;default:1" json:"duration"`
	DurationType      string           `gorm:"type:varchar(10);not null;default:'month'" json:"duration_type" validate:"oneof=day week month year fixed"`
	FixedExpiration   *time.Time       `gorm:"type:date;default:null" json:"fixed_expiration,omitempty"`
	BonusDuration     int              `gorm:"not null;default:0" json:"bonus_duration"`
	BonusDurationType string           `gorm:"type:varchar(10);not null;default:'month'" json:"bonus_duration_type" validate:"oneof=day week month year"`
	GraceDays         int              `gorm:"not null;default:0" json:"grace_days"`
	EarlyRenewalDays  int              `gorm:"not null;default:0" json:"early_renewal_days"`
	TrialDays         int              `gorm:"not null;default:0" json:"trial_days"`
	AtRegistration    bool             `gorm:"not null;default:false" json:"at_registration"`
	UpgradeFromID     string           `gorm:"type:varchar(128);default:''" json:"upgrade_from_id"`
	UpgradePrice      decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0.00" json:"upgrade_price"`
	UpgradeExtendsExp bool             `gorm:"not null;default:false" json:"upgrade_extends_exp"`
	GroupID           uint             `gorm:"not null;index" json:"group_id"`
	Enabled           bool             `gorm:"not null;default:true;index" json:"enabled"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// NormalizeDurationType maps free-form input to a known duration unit,
// falling back to month like the catalog always has.
func NormalizeDurationType(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case DurationDay:
		return DurationDay
	case DurationWeek:
		return DurationWeek
	case DurationYear:
		return DurationYear
	case DurationFixed:
		return DurationFixed
	default:
		return DurationMonth
	}
}

// AddDuration advances t by n units of the given duration type.
// DurationFixed has no relative meaning and returns t unchanged; callers
// handle fixed-date plans before doing relative math.
func AddDuration(t time.Time, n int, durationType string) time.Time {
	switch NormalizeDurationType(durationType) {
	case DurationDay:
		return t.AddDate(0, 0, n)
	case DurationWeek:
		return t.AddDate(0, 0, 7*n)
	case DurationYear:
		return t.AddDate(n, 0, 0)
	case DurationFixed:
		return t
	default:
		return t.AddDate(0, n, 0)
	}
}

// Validate checks field constraints plus the duration invariant: fixed-type
// plans need a fixed expiration date, all others need a duration of at
// least one unit.
func (p *Plan) Validate() error {
	v := validator.New()
	if err := v.Struct(p); err != nil {
		return err
	}
	if p.DurationType == DurationFixed {
		if p.FixedExpiration == nil {
			return errors.New("fixed-duration plans require a fixed expiration date")
		}
	} else if p.Duration < 1 {
		return errors.New("duration must be at least 1")
	}
	if p.Price.IsNegative() || p.UpgradePrice.IsNegative() {
		return errors.New("prices must not be negative")
	}
	if p.BonusDuration < 0 || p.GraceDays < 0 || p.EarlyRenewalDays < 0 || p.TrialDays < 0 {
		return errors.New("durations and day counts must not be negative")
	}
	return nil
}

// IsUpgrade reports whether this plan is reachable only as an upgrade from
// another plan.
func (p *Plan) IsUpgrade() bool {
	return p.UpgradeFromID != ""
}
