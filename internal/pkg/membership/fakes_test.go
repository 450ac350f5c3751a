package membership

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/memberhive/memberhive/app/models"
)

// In-memory repository fakes. They mirror the contract of the GORM-backed
// implementations, including gorm.ErrRecordNotFound on misses, so the
// service under test cannot tell the difference.

type fakePlanRepo struct {
	plans map[string]*models.Plan
}

func newFakePlanRepo(plans ...*models.Plan) *fakePlanRepo {
	f := &fakePlanRepo{plans: make(map[string]*models.Plan)}
	for _, p := range plans {
		cp := *p
		f.plans[p.ID] = &cp
	}
	return f
}

func (f *fakePlanRepo) GetByID(id string) (*models.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlanRepo) List(enabledOnly bool) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range f.plans {
		if enabledOnly && !p.Enabled {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePlanRepo) ListAtRegistration() ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range f.plans {
		if p.Enabled && p.AtRegistration {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) Exists(id string) (bool, error) {
	_, ok := f.plans[id]
	return ok, nil
}

func (f *fakePlanRepo) Create(plan *models.Plan) error {
	cp := *plan
	f.plans[plan.ID] = &cp
	return nil
}

func (f *fakePlanRepo) Update(plan *models.Plan) error {
	cp := *plan
	f.plans[plan.ID] = &cp
	return nil
}

func (f *fakePlanRepo) Rename(oldID, newID string) error {
	p, ok := f.plans[oldID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.plans, oldID)
	p.ID = newID
	f.plans[newID] = p
	return nil
}

func (f *fakePlanRepo) Delete(id string) error {
	delete(f.plans, id)
	return nil
}

func (f *fakePlanRepo) CountSubscriptions(planID string) (int64, error) {
	return 0, nil
}

type fakeSubscriptionRepo struct {
	nextID uint
	rows   map[uint]*models.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{nextID: 1, rows: make(map[uint]*models.Subscription)}
}

func (f *fakeSubscriptionRepo) seed(sub models.Subscription) *models.Subscription {
	if sub.ID == 0 {
		sub.ID = f.nextID
		f.nextID++
	}
	f.rows[sub.ID] = &sub
	return &sub
}

func (f *fakeSubscriptionRepo) GetByID(id uint) (*models.Subscription, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeSubscriptionRepo) GetByUserAndPlan(userID uint, planID string) (*models.Subscription, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.PlanID == planID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubscriptionRepo) Upsert(sub *models.Subscription) error {
	for _, row := range f.rows {
		if row.UserID == sub.UserID && row.PlanID == sub.PlanID {
			row.Expiration = sub.Expiration
			row.Status = sub.Status
			row.Notified = sub.Notified
			sub.ID = row.ID
			return nil
		}
	}
	cp := *sub
	cp.ID = f.nextID
	f.nextID++
	f.rows[cp.ID] = &cp
	sub.ID = cp.ID
	return nil
}

func (f *fakeSubscriptionRepo) UpdateByID(sub *models.Subscription) error {
	row, ok := f.rows[sub.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.PlanID = sub.PlanID
	row.Expiration = sub.Expiration
	row.Status = sub.Status
	row.Notified = sub.Notified
	return nil
}

func (f *fakeSubscriptionRepo) ListByUser(userID uint, statuses ...string) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				if row.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) MostRecentForUser(userID uint) (*models.Subscription, error) {
	var best *models.Subscription
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		if best == nil || row.Expiration.After(best.Expiration) {
			best = row
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (f *fakeSubscriptionRepo) ListEnabledExpiredBefore(cutoff time.Time) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, row := range f.rows {
		if row.Status == models.SubscriptionStatusEnabled && row.Expiration.Before(cutoff) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) ListUnnotifiedExpiringBefore(cutoff time.Time) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, row := range f.rows {
		if row.Status == models.SubscriptionStatusEnabled && !row.Notified && row.Expiration.Before(cutoff) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) SetNotified(id uint, notified bool) error {
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Notified = notified
	return nil
}

func (f *fakeSubscriptionRepo) Delete(id uint) error {
	delete(f.rows, id)
	return nil
}

type fakeHistoryRepo struct {
	entries []models.HistoryEntry
}

func (f *fakeHistoryRepo) Create(entry *models.HistoryEntry) error {
	cp := *entry
	cp.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, cp)
	return nil
}

func (f *fakeHistoryRepo) ExistsTxn(userID uint, planID, txnID string) (bool, error) {
	for _, e := range f.entries {
		if e.UserID == userID && e.PlanID == planID && e.TxnID == txnID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHistoryRepo) ListByUser(userID uint) ([]models.HistoryEntry, error) {
	var out []models.HistoryEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) ListByPlan(planID string) ([]models.HistoryEntry, error) {
	var out []models.HistoryEntry
	for _, e := range f.entries {
		if e.PlanID == planID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeReferralRepo struct {
	entries []models.Referral
}

func (f *fakeReferralRepo) Create(entry *models.Referral) error {
	cp := *entry
	cp.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, cp)
	return nil
}

func (f *fakeReferralRepo) ListByReferrer(referrerID uint) ([]models.Referral, error) {
	var out []models.Referral
	for _, e := range f.entries {
		if e.ReferrerID == referrerID {
			out = append(out, e)
		}
	}
	return out, nil
}

type grantCall struct {
	groupID uint
	userID  uint
}

type fakeGateway struct {
	mu      sync.Mutex
	grants  []grantCall
	revokes []grantCall
}

func (f *fakeGateway) Grant(ctx context.Context, groupID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = append(f.grants, grantCall{groupID, userID})
	return nil
}

func (f *fakeGateway) Revoke(ctx context.Context, groupID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokes = append(f.revokes, grantCall{groupID, userID})
	return nil
}

type fakeLinked struct {
	children []uint
}

func (f fakeLinked) Children(ctx context.Context, userID uint) ([]uint, error) {
	return f.children, nil
}

type notice struct {
	userID     uint
	planName   string
	expiration time.Time
}

type fakeNotifier struct {
	warnings []notice
	bonuses  []notice
}

func (f *fakeNotifier) SendExpirationWarning(userID uint, planName string, expiration time.Time) error {
	f.warnings = append(f.warnings, notice{userID, planName, expiration})
	return nil
}

func (f *fakeNotifier) SendBonusNotice(referrerID uint, planName string, newExpiration time.Time) error {
	f.bonuses = append(f.bonuses, notice{referrerID, planName, newExpiration})
	return nil
}
