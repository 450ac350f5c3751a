package repository

import (
	"github.com/memberhive/memberhive/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) GetByID(id string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) List(enabledOnly bool) ([]models.Plan, error) {
	var plans []models.Plan
	q := r.db.Order("id ASC")
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	err := q.Find(&plans).Error
	return plans, err
}

func (r *planRepository) ListAtRegistration() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("enabled = ? AND at_registration = ?", true, true).
		Find(&plans).Error
	return plans, err
}

func (r *planRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Plan{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

func (r *planRepository) Update(plan *models.Plan) error {
	// Save writes all fields so cleared flags (enabled=false) stick.
	return r.db.Save(plan).Error
}

// Rename rewrites subscription rows to the new plan id first, then the plan
// row. Done in a transaction so a failed rename leaves nothing orphaned.
func (r *planRepository) Rename(oldID, newID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).
			Where("plan_id = ?", oldID).
			Update("plan_id", newID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Plan{}).
			Where("id = ?", oldID).
			Update("id", newID).Error
	})
}

func (r *planRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Plan{}).Error
}

func (r *planRepository) CountSubscriptions(planID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("plan_id = ?", planID).
		Count(&count).Error
	return count, err
}
