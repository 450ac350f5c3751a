package membership

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/memberhive/memberhive/app/models"
)

var (
	// ErrInvalidUser means the user id is below the minimum valid account id.
	ErrInvalidUser = errors.New("membership: invalid user id")
	// ErrNotFound means no subscription matched the lookup.
	ErrNotFound = errors.New("membership: subscription not found")
	// ErrNotUpgradable means the upgrade preconditions failed: the purchased
	// plan does not upgrade from the user's current plan, or the current
	// subscription is not active.
	ErrNotUpgradable = errors.New("membership: subscription does not qualify for this upgrade")
	// ErrRenewalTooEarly means the renewal is further ahead of expiration
	// than the plan's early-renewal window allows.
	ErrRenewalTooEarly = errors.New("membership: renewal attempted before the early-renewal window")
)

// Config carries the knobs external to any single plan.
type Config struct {
	// MinUserID is the lowest user id treated as a real account.
	MinUserID uint
	// NotifyDays is how many days before expiration the warning sweep
	// starts notifying subscribers.
	NotifyDays int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MinUserID:  models.MinValidUserID,
		NotifyDays: 7,
	}
}

// PurchaseInput is one purchase event: a payment notification, an admin
// test purchase, or a registration trial enrollment.
type PurchaseInput struct {
	UserID uint
	PlanID string
	// Duration and DurationType override the plan's values when set
	// (> 0 / non-empty). Used for trial enrollments.
	Duration     int
	DurationType string
	IsUpgrade    bool
	TxnID        string
	// Price overrides the recorded price when non-nil; otherwise the
	// plan's price (or upgrade price) is recorded.
	Price *decimal.Decimal
}

// Notifier delivers subscriber-facing messages. Failures are logged by the
// service, never propagated into the lifecycle transition.
type Notifier interface {
	SendExpirationWarning(userID uint, planName string, expiration time.Time) error
	SendBonusNotice(referrerID uint, planName string, newExpiration time.Time) error
}

// NoopNotifier drops all messages.
type NoopNotifier struct{}

func (NoopNotifier) SendExpirationWarning(uint, string, time.Time) error { return nil }
func (NoopNotifier) SendBonusNotice(uint, string, time.Time) error       { return nil }
