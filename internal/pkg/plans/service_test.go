package plans

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/memberhive/memberhive/app/models"
)

// memPlanRepo is an in-memory PlanRepository that records the order of
// mutating calls, so tests can assert the rename cascade runs before the
// plan row update.
type memPlanRepo struct {
	plans     map[string]*models.Plan
	subCounts map[string]int64
	ops       []string
}

func newMemPlanRepo(plans ...*models.Plan) *memPlanRepo {
	r := &memPlanRepo{plans: make(map[string]*models.Plan), subCounts: make(map[string]int64)}
	for _, p := range plans {
		cp := *p
		r.plans[p.ID] = &cp
	}
	return r
}

func (r *memPlanRepo) GetByID(id string) (*models.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPlanRepo) List(enabledOnly bool) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if enabledOnly && !p.Enabled {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memPlanRepo) ListAtRegistration() ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if p.Enabled && p.AtRegistration {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPlanRepo) Exists(id string) (bool, error) {
	_, ok := r.plans[id]
	return ok, nil
}

func (r *memPlanRepo) Create(plan *models.Plan) error {
	r.ops = append(r.ops, "create:"+plan.ID)
	cp := *plan
	r.plans[plan.ID] = &cp
	return nil
}

func (r *memPlanRepo) Update(plan *models.Plan) error {
	r.ops = append(r.ops, "update:"+plan.ID)
	cp := *plan
	r.plans[plan.ID] = &cp
	return nil
}

func (r *memPlanRepo) Rename(oldID, newID string) error {
	r.ops = append(r.ops, "rename:"+oldID+"->"+newID)
	p, ok := r.plans[oldID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.plans, oldID)
	p.ID = newID
	r.plans[newID] = p
	return nil
}

func (r *memPlanRepo) Delete(id string) error {
	r.ops = append(r.ops, "delete:"+id)
	delete(r.plans, id)
	return nil
}

func (r *memPlanRepo) CountSubscriptions(planID string) (int64, error) {
	return r.subCounts[planID], nil
}

func validPlan(id string) *models.Plan {
	return &models.Plan{
		ID:                id,
		Name:              "Plan " + id,
		Price:             decimal.NewFromFloat(12.00),
		Duration:          1,
		DurationType:      models.DurationMonth,
		BonusDurationType: models.DurationMonth,
		GroupID:           3,
		Enabled:           true,
	}
}

func TestSaveCreateNormalizes(t *testing.T) {
	repo := newMemPlanRepo()
	svc := NewService(repo, nil)

	plan := validPlan("silver")
	plan.Name = "  Silver  "
	plan.DurationType = " MONTH "
	plan.BonusDurationType = "bogus"
	plan.Price = decimal.NewFromFloat(12.005)

	require.NoError(t, svc.Save(plan, ""))

	saved, err := repo.GetByID("silver")
	require.NoError(t, err)
	assert.Equal(t, "Silver", saved.Name)
	assert.Equal(t, models.DurationMonth, saved.DurationType)
	assert.Equal(t, models.DurationMonth, saved.BonusDurationType)
	assert.Equal(t, "12.01", saved.Price.StringFixed(2))
}

func TestSaveGeneratesIDWhenBlank(t *testing.T) {
	repo := newMemPlanRepo()
	svc := NewService(repo, nil)

	plan := validPlan("")
	require.NoError(t, svc.Save(plan, ""))
	assert.Len(t, plan.ID, 12)

	_, err := repo.GetByID(plan.ID)
	assert.NoError(t, err)
}

func TestSaveRejectsDuplicateID(t *testing.T) {
	repo := newMemPlanRepo(validPlan("silver"))
	svc := NewService(repo, nil)

	err := svc.Save(validPlan("silver"), "")
	assert.ErrorIs(t, err, ErrExists)
}

func TestSaveValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Plan)
	}{
		{"missing name", func(p *models.Plan) { p.Name = "" }},
		{"zero duration", func(p *models.Plan) { p.Duration = 0 }},
		{"negative price", func(p *models.Plan) { p.Price = decimal.NewFromInt(-1) }},
		{"fixed without date", func(p *models.Plan) { p.DurationType = models.DurationFixed }},
		{"negative grace days", func(p *models.Plan) { p.GraceDays = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemPlanRepo()
			svc := NewService(repo, nil)

			plan := validPlan("silver")
			tt.mutate(plan)

			err := svc.Save(plan, "")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Problems)
			assert.Empty(t, repo.ops, "invalid plans must not reach the repository")
		})
	}
}

func TestSaveRenameCascadesBeforePlanUpdate(t *testing.T) {
	repo := newMemPlanRepo(validPlan("silver"))
	svc := NewService(repo, nil)

	renamed := validPlan("silver-v2")
	require.NoError(t, svc.Save(renamed, "silver"))

	// Subscription rows move to the new id before the plan row is touched.
	require.Equal(t, []string{"rename:silver->silver-v2", "update:silver-v2"}, repo.ops)

	_, err := repo.GetByID("silver")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.GetByID("silver-v2")
	assert.NoError(t, err)
}

func TestSaveRenameOntoExistingID(t *testing.T) {
	repo := newMemPlanRepo(validPlan("silver"), validPlan("gold"))
	svc := NewService(repo, nil)

	err := svc.Save(validPlan("gold"), "silver")
	assert.ErrorIs(t, err, ErrExists)
	assert.Empty(t, repo.ops)
}

func TestGetPlanUnknown(t *testing.T) {
	svc := NewService(newMemPlanRepo(), nil)

	_, err := svc.GetPlan("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetPlan("   ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteGuardedByUse(t *testing.T) {
	repo := newMemPlanRepo(validPlan("silver"))
	repo.subCounts["silver"] = 4
	svc := NewService(repo, nil)

	assert.ErrorIs(t, svc.Delete("silver"), ErrInUse)

	repo.subCounts["silver"] = 0
	require.NoError(t, svc.Delete("silver"))
	_, err := repo.GetByID("silver")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestToggleEnabled(t *testing.T) {
	repo := newMemPlanRepo(validPlan("silver"))
	svc := NewService(repo, nil)

	enabled, err := svc.ToggleEnabled("silver")
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = svc.ToggleEnabled("silver")
	require.NoError(t, err)
	assert.True(t, enabled)
}
