package payments

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/memberhive/memberhive/app/models"
	"github.com/memberhive/memberhive/app/repository"
	"github.com/memberhive/memberhive/internal/pkg/membership"
)

// Lifecycle is the slice of the membership service the ingest drives.
type Lifecycle interface {
	Add(ctx context.Context, in membership.PurchaseInput) (*models.Subscription, error)
	AddBonus(ctx context.Context, referrerID uint, purchased *models.Subscription, notify bool) error
	Cancel(ctx context.Context, userID uint, planID string) error
}

// Ingest turns payment gateway notifications into lifecycle transitions.
// It owns payer and referrer resolution; the membership service owns the
// state machine.
type Ingest struct {
	users      repository.UserRepository
	membership Lifecycle
}

// NewIngest creates the purchase event ingest.
func NewIngest(users repository.UserRepository, svc Lifecycle) *Ingest {
	return &Ingest{users: users, membership: svc}
}

// HandlePurchase applies a purchase notification. The returned error is nil
// only when the subscription ledger was updated; the caller maps that to
// its HTTP status so the gateway's redelivery policy can take over on
// failure. A referral-bonus failure after a successful purchase is logged
// but does not fail the event.
func (i *Ingest) HandlePurchase(ctx context.Context, n Notification) error {
	item, err := ParseItemID(n.ItemID)
	if err != nil {
		return err
	}

	userID, err := i.resolvePayer(n)
	if err != nil {
		return err
	}

	gross := n.Gross
	sub, err := i.membership.Add(ctx, membership.PurchaseInput{
		UserID:    userID,
		PlanID:    item.PlanID,
		IsUpgrade: item.Upgrade,
		TxnID:     n.TxnID,
		Price:     &gross,
	})
	if err != nil {
		return err
	}

	if refID := i.resolveReferrer(n, item, userID); refID > 0 {
		if err := i.membership.AddBonus(ctx, refID, sub, true); err != nil {
			log.Errorf("referral bonus for user %d on txn %s failed: %v", refID, n.TxnID, err)
		}
	}
	return nil
}

// HandleRefund cancels the payer's subscription for the refunded plan.
func (i *Ingest) HandleRefund(ctx context.Context, n Notification) error {
	item, err := ParseItemID(n.ItemID)
	if err != nil {
		return err
	}
	userID, err := i.resolvePayer(n)
	if err != nil {
		return err
	}
	return i.membership.Cancel(ctx, userID, item.PlanID)
}

func (i *Ingest) resolvePayer(n Notification) (uint, error) {
	if n.UserID > 0 {
		return n.UserID, nil
	}
	if n.PayerEmail == "" {
		return 0, ErrUnknownPayer
	}
	user, err := i.users.GetByEmail(n.PayerEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUnknownPayer
		}
		return 0, err
	}
	return user.ID, nil
}

// resolveReferrer prefers an explicit referrer uid, then the referral
// token from the item id. Self-referrals earn nothing.
func (i *Ingest) resolveReferrer(n Notification, item ParsedItem, buyerID uint) uint {
	refID := n.RefUserID
	if refID == 0 {
		token := n.RefToken
		if token == "" {
			token = item.RefToken
		}
		if token == "" {
			return 0
		}
		user, err := i.users.GetByReferralToken(token)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warnf("referral token lookup failed: %v", err)
			}
			return 0
		}
		refID = user.ID
	}
	if refID == buyerID {
		return 0
	}
	return refID
}
