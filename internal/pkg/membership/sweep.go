package membership

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/memberhive/memberhive/app/models"
)

// RunExpirySweep expires every enabled subscription whose expiration plus
// its plan's grace period has passed. Invoked periodically from outside the
// request path; each expiration goes through the normal transition so
// entitlement revocation and audit logging behave exactly as a manual
// expire would.
func (s *Service) RunExpirySweep(ctx context.Context) error {
	today := s.clk.Today()
	candidates, err := s.subs.ListEnabledExpiredBefore(today)
	if err != nil {
		return err
	}

	expired := 0
	for i := range candidates {
		sub := &candidates[i]
		plan, err := s.plans.GetPlan(sub.PlanID)
		if err != nil {
			log.Errorf("expiry sweep: plan %s for subscription %d: %v", sub.PlanID, sub.ID, err)
			continue
		}
		// Within the grace window access stays on.
		graceEnd := sub.Expiration.AddDate(0, 0, plan.GraceDays)
		if !today.After(graceEnd) {
			continue
		}
		if err := s.transition(ctx, sub, models.SubscriptionStatusExpired); err != nil {
			log.Errorf("expiry sweep: subscription %d: %v", sub.ID, err)
			continue
		}
		expired++
	}
	if expired > 0 {
		log.Infof("expiry sweep expired %d subscription(s)", expired)
	}
	return nil
}

// RunNotifySweep sends an expiration warning to enabled subscribers inside
// the notification window and marks them notified so the warning goes out
// at most once per renewal cycle.
func (s *Service) RunNotifySweep(ctx context.Context) error {
	if s.cfg.NotifyDays <= 0 {
		return nil
	}
	cutoff := s.clk.Today().AddDate(0, 0, s.cfg.NotifyDays)
	candidates, err := s.subs.ListUnnotifiedExpiringBefore(cutoff)
	if err != nil {
		return err
	}

	for i := range candidates {
		sub := &candidates[i]
		plan, err := s.plans.GetPlan(sub.PlanID)
		if err != nil {
			log.Errorf("notify sweep: plan %s for subscription %d: %v", sub.PlanID, sub.ID, err)
			continue
		}
		if err := s.notifier.SendExpirationWarning(sub.UserID, plan.Name, sub.Expiration); err != nil {
			log.Warnf("notify sweep: warning to user %d failed: %v", sub.UserID, err)
			continue
		}
		if err := s.subs.SetNotified(sub.ID, true); err != nil {
			log.Errorf("notify sweep: marking subscription %d notified: %v", sub.ID, err)
		}
	}
	return nil
}
