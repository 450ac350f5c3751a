package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/memberhive/memberhive/app/models"
	"github.com/memberhive/memberhive/app/repository"
	"github.com/memberhive/memberhive/internal/pkg/cache"
	"github.com/memberhive/memberhive/internal/pkg/clock"
	"github.com/memberhive/memberhive/internal/pkg/entitlements"
	"github.com/memberhive/memberhive/internal/pkg/plans"
)

// Service drives the subscription lifecycle: applying purchase events,
// cancellation, expiration, referral bonuses and the periodic sweeps.
//
// Ordering inside a transition is deliberate: the ledger row is written
// first and downstream effects (entitlement grant, history, referral) are
// skipped entirely if that write fails. A downstream failure after a
// successful ledger write is logged but not rolled back; grants are
// idempotent and re-derivable from ledger state.
type Service struct {
	subs      repository.SubscriptionRepository
	history   repository.HistoryRepository
	referrals repository.ReferralRepository
	plans     *plans.Service
	gateway   entitlements.Gateway
	linked    entitlements.LinkedAccounts
	cache     cache.Port
	clk       clock.Clock
	notifier  Notifier
	cfg       Config
}

// NewService wires the lifecycle service. Nil optional collaborators
// (linked accounts, cache, notifier) get no-op defaults.
func NewService(
	repos *repository.Repositories,
	planSvc *plans.Service,
	gateway entitlements.Gateway,
	linked entitlements.LinkedAccounts,
	cachePort cache.Port,
	clk clock.Clock,
	notifier Notifier,
	cfg Config,
) *Service {
	if linked == nil {
		linked = entitlements.NoLinkedAccounts{}
	}
	if cachePort == nil {
		cachePort = cache.Noop{}
	}
	if clk == nil {
		clk = clock.System()
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Service{
		subs:      repos.Subscription,
		history:   repos.History,
		referrals: repos.Referral,
		plans:     planSvc,
		gateway:   gateway,
		linked:    linked,
		cache:     cachePort,
		clk:       clk,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Add applies one purchase event: a fresh enrollment, a renewal, or an
// upgrade from the plan's designated source plan. Redelivered events (same
// transaction id for the same user and plan) are a success no-op.
func (s *Service) Add(ctx context.Context, in PurchaseInput) (*models.Subscription, error) {
	if in.UserID < s.cfg.MinUserID {
		return nil, ErrInvalidUser
	}

	plan, err := s.plans.GetPlan(in.PlanID)
	if err != nil {
		return nil, err
	}

	if in.TxnID != "" {
		seen, err := s.history.ExistsTxn(in.UserID, plan.ID, in.TxnID)
		if err != nil {
			return nil, fmt.Errorf("checking transaction %s: %w", in.TxnID, err)
		}
		if seen {
			log.Infof("txn %s for user %d plan %s already applied, skipping", in.TxnID, in.UserID, plan.ID)
			return s.subscriptionFor(in.UserID, plan.ID)
		}
	}

	// For an upgrade the canonical row is the one on the source plan; the
	// purchase moves it to the new plan. Otherwise it is the row on the
	// purchased plan itself.
	lookupPlanID := plan.ID
	if in.IsUpgrade {
		if plan.UpgradeFromID == "" || plan.UpgradeFromID == plan.ID {
			return nil, ErrNotUpgradable
		}
		lookupPlanID = plan.UpgradeFromID
	}

	existing, err := s.subs.GetByUserAndPlan(in.UserID, lookupPlanID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading subscription for user %d plan %s: %w", in.UserID, lookupPlanID, err)
	}

	today := s.clk.Today()

	if in.IsUpgrade {
		if existing == nil || !existing.IsActive() {
			return nil, ErrNotUpgradable
		}
	} else if existing != nil && existing.IsActive() && plan.EarlyRenewalDays > 0 {
		earliest := existing.Expiration.AddDate(0, 0, -plan.EarlyRenewalDays)
		if today.Before(earliest) {
			return nil, ErrRenewalTooEarly
		}
	}

	// Renewing early never loses remaining time; renewing after a lapse
	// restarts the clock at today.
	base := today
	if existing != nil && existing.Expiration.After(today) {
		base = existing.Expiration
	}

	duration := plan.Duration
	if in.Duration > 0 {
		duration = in.Duration
	}
	durationType := plan.DurationType
	if in.DurationType != "" {
		durationType = models.NormalizeDurationType(in.DurationType)
	}

	expiration := base
	if !in.IsUpgrade || plan.UpgradeExtendsExp {
		if durationType == models.DurationFixed {
			if plan.FixedExpiration == nil {
				return nil, fmt.Errorf("plan %s is fixed-duration but has no fixed expiration", plan.ID)
			}
			expiration = clock.Midnight(*plan.FixedExpiration)
		} else {
			expiration = models.AddDuration(base, duration, durationType)
		}
	}

	sub := existing
	if sub == nil {
		sub = &models.Subscription{UserID: in.UserID, PlanID: plan.ID}
	}
	sub.PlanID = plan.ID
	sub.Expiration = expiration
	sub.Status = models.SubscriptionStatusEnabled
	sub.Notified = false

	// Ledger write first. Nothing downstream runs if this fails.
	if existing != nil {
		err = s.subs.UpdateByID(sub)
	} else {
		err = s.subs.Upsert(sub)
	}
	if err != nil {
		log.Errorf("subscription write failed for user %d plan %s: %v", in.UserID, plan.ID, err)
		return nil, fmt.Errorf("persisting subscription: %w", err)
	}

	s.grant(ctx, plan, sub.UserID)
	s.clearSubscriptionCache()

	price := plan.Price
	if in.IsUpgrade {
		price = plan.UpgradePrice
	}
	if in.Price != nil {
		price = *in.Price
	}
	entry := &models.HistoryEntry{
		PlanID:       plan.ID,
		UserID:       sub.UserID,
		TxnID:        in.TxnID,
		PurchaseDate: s.clk.Now(),
		Expiration:   sub.Expiration,
		PricePaid:    price.Round(2),
	}
	if err := s.history.Create(entry); err != nil {
		// Best-effort boundary: the ledger row is already committed.
		log.Errorf("history write failed for txn %s user %d plan %s: %v", in.TxnID, sub.UserID, plan.ID, err)
	}

	log.Infof("subscription %d: user %d on plan %s until %s (txn %s)",
		sub.ID, sub.UserID, sub.PlanID, sub.Expiration.Format("2006-01-02"), in.TxnID)
	return sub, nil
}

// AddBonus extends the referrer's own subscription by the purchased plan's
// bonus duration and records the referral. A plan without a bonus duration,
// or a referrer without a subscription, is a success without effect.
func (s *Service) AddBonus(ctx context.Context, referrerID uint, purchased *models.Subscription, notify bool) error {
	if referrerID < s.cfg.MinUserID || purchased == nil {
		return nil
	}

	plan, err := s.plans.GetPlan(purchased.PlanID)
	if err != nil {
		return err
	}
	if plan.BonusDuration <= 0 {
		return nil
	}
	// Only purchases that are still valid earn a bonus.
	if purchased.Expiration.Before(s.clk.Today()) {
		return nil
	}

	ref, err := s.subs.MostRecentForUser(referrerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Infof("referrer %d has no subscription, skipping bonus", referrerID)
			return nil
		}
		return fmt.Errorf("loading referrer %d subscription: %w", referrerID, err)
	}

	base := ref.Expiration
	if today := s.clk.Today(); base.Before(today) {
		base = today
	}
	ref.Expiration = models.AddDuration(base, plan.BonusDuration, plan.BonusDurationType)
	if err := s.subs.UpdateByID(ref); err != nil {
		return fmt.Errorf("extending referrer %d subscription: %w", referrerID, err)
	}
	s.clearSubscriptionCache()

	if err := s.referrals.Create(&models.Referral{
		ReferrerID:     referrerID,
		SubscriptionID: purchased.ID,
		PurchaseDate:   s.clk.Now(),
	}); err != nil {
		log.Errorf("referral write failed for referrer %d subscription %d: %v", referrerID, purchased.ID, err)
	}

	log.Infof("referral bonus: user %d extended to %s for purchase %d",
		referrerID, ref.Expiration.Format("2006-01-02"), purchased.ID)
	if notify {
		if err := s.notifier.SendBonusNotice(referrerID, plan.Name, ref.Expiration); err != nil {
			log.Warnf("bonus notice to user %d failed: %v", referrerID, err)
		}
	}
	return nil
}

// Cancel cancels the subscription for (userID, planID).
func (s *Service) Cancel(ctx context.Context, userID uint, planID string) error {
	sub, err := s.subscriptionFor(userID, planID)
	if err != nil {
		return err
	}
	return s.transition(ctx, sub, models.SubscriptionStatusCanceled)
}

// CancelByID cancels a subscription by row id.
func (s *Service) CancelByID(ctx context.Context, id uint) error {
	sub, err := s.subscriptionByID(id)
	if err != nil {
		return err
	}
	return s.transition(ctx, sub, models.SubscriptionStatusCanceled)
}

// Expire marks the subscription for (userID, planID) expired. Intended for
// the scheduled sweep once expiration plus grace has passed, not for
// direct user action.
func (s *Service) Expire(ctx context.Context, userID uint, planID string) error {
	sub, err := s.subscriptionFor(userID, planID)
	if err != nil {
		return err
	}
	return s.transition(ctx, sub, models.SubscriptionStatusExpired)
}

// ExpireByID marks a subscription expired by row id.
func (s *Service) ExpireByID(ctx context.Context, id uint) error {
	sub, err := s.subscriptionByID(id)
	if err != nil {
		return err
	}
	return s.transition(ctx, sub, models.SubscriptionStatusExpired)
}

// transition revokes entitlement and moves the row to a terminal status.
// Repeating a transition is safe: the revoke is idempotent and the row
// write is skipped when the status already matches.
func (s *Service) transition(ctx context.Context, sub *models.Subscription, status string) error {
	plan, err := s.plans.GetPlan(sub.PlanID)
	if err != nil {
		return err
	}

	s.revoke(ctx, plan, sub.UserID)

	if sub.Status != status {
		sub.Status = status
		if err := s.subs.UpdateByID(sub); err != nil {
			return fmt.Errorf("persisting %s of subscription %d: %w", status, sub.ID, err)
		}
		s.clearSubscriptionCache()
	}

	log.Infof("subscription %d (%s) for user %d now %s, expiring %s",
		sub.ID, sub.PlanID, sub.UserID, status, sub.Expiration.Format("2006-01-02"))
	return nil
}

// Delete hard-removes a subscription row. Administrative cleanup only;
// Cancel and Expire never reach this path.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.subscriptionByID(id); err != nil {
		return err
	}
	if err := s.subs.Delete(id); err != nil {
		return fmt.Errorf("deleting subscription %d: %w", id, err)
	}
	s.clearSubscriptionCache()
	log.Infof("subscription %d deleted", id)
	return nil
}

// EnrollAtRegistration enrolls a new account into every enabled plan
// flagged for registration enrollment, as a zero-price trial purchase.
func (s *Service) EnrollAtRegistration(ctx context.Context, userID uint) error {
	enrollable, err := s.plans.ListAtRegistration()
	if err != nil {
		return err
	}
	zero := decimal.Zero
	for _, plan := range enrollable {
		in := PurchaseInput{
			UserID: userID,
			PlanID: plan.ID,
			TxnID:  "trial:" + uuid.NewString(),
			Price:  &zero,
		}
		if plan.TrialDays > 0 {
			in.Duration = plan.TrialDays
			in.DurationType = models.DurationDay
		}
		if _, err := s.Add(ctx, in); err != nil {
			log.Errorf("trial enrollment of user %d into plan %s failed: %v", userID, plan.ID, err)
		}
	}
	return nil
}

// GetSubscriptions returns a user's subscriptions, optionally filtered by
// status.
func (s *Service) GetSubscriptions(userID uint, statuses ...string) ([]models.Subscription, error) {
	return s.subs.ListByUser(userID, statuses...)
}

// MostRecentForUser returns the user's latest-expiring subscription across
// all plans.
func (s *Service) MostRecentForUser(userID uint) (*models.Subscription, error) {
	sub, err := s.subs.MostRecentForUser(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return sub, err
}

func (s *Service) subscriptionFor(userID uint, planID string) (*models.Subscription, error) {
	sub, err := s.subs.GetByUserAndPlan(userID, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *Service) subscriptionByID(id uint) (*models.Subscription, error) {
	sub, err := s.subs.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

// grant adds the user and any linked child accounts to the plan's
// entitlement group. Failures are logged, not returned: the ledger row is
// already committed and a repair sweep can re-derive grants from it.
func (s *Service) grant(ctx context.Context, plan *models.Plan, userID uint) {
	if err := s.gateway.Grant(ctx, plan.GroupID, userID); err != nil {
		log.Errorf("entitlement grant failed for user %d group %d: %v", userID, plan.GroupID, err)
	}
	children, err := s.linked.Children(ctx, userID)
	if err != nil {
		log.Warnf("linked account lookup failed for user %d: %v", userID, err)
		return
	}
	for _, child := range children {
		if err := s.gateway.Grant(ctx, plan.GroupID, child); err != nil {
			log.Errorf("entitlement grant failed for linked user %d group %d: %v", child, plan.GroupID, err)
		}
	}
}

func (s *Service) revoke(ctx context.Context, plan *models.Plan, userID uint) {
	if err := s.gateway.Revoke(ctx, plan.GroupID, userID); err != nil {
		log.Errorf("entitlement revoke failed for user %d group %d: %v", userID, plan.GroupID, err)
	}
	children, err := s.linked.Children(ctx, userID)
	if err != nil {
		log.Warnf("linked account lookup failed for user %d: %v", userID, err)
		return
	}
	for _, child := range children {
		if err := s.gateway.Revoke(ctx, plan.GroupID, child); err != nil {
			log.Errorf("entitlement revoke failed for linked user %d group %d: %v", child, plan.GroupID, err)
		}
	}
}

func (s *Service) clearSubscriptionCache() {
	if err := s.cache.ClearTag(cache.TagSubscriptions); err != nil {
		log.Warnf("subscription cache clear failed: %v", err)
	}
}
