package plans

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/memberhive/memberhive/app/models"
	"github.com/memberhive/memberhive/app/repository"
	"github.com/memberhive/memberhive/internal/pkg/cache"
	"gorm.io/gorm"
)

const planCacheTTL = 24 * time.Hour

// Service manages the plan catalog: lookups with caching, validated saves
// with id-rename cascade, guarded deletes and the enabled toggle.
type Service struct {
	repo  repository.PlanRepository
	cache cache.Port
}

// NewService creates a plan catalog service.
func NewService(repo repository.PlanRepository, cachePort cache.Port) *Service {
	if cachePort == nil {
		cachePort = cache.Noop{}
	}
	return &Service{repo: repo, cache: cachePort}
}

// GetPlan resolves a plan id, preferring the cache.
func (s *Service) GetPlan(id string) (*models.Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	key := "plan:" + id
	if raw, err := s.cache.Get(key); err == nil {
		var plan models.Plan
		if err := json.Unmarshal([]byte(raw), &plan); err == nil {
			return &plan, nil
		}
		// Corrupt cache entry, fall through to the database.
	}

	plan, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if raw, err := json.Marshal(plan); err == nil {
		if err := s.cache.SetTagged(key, string(raw), planCacheTTL, cache.TagPlans); err != nil {
			log.Warnf("plan cache write failed for %s: %v", id, err)
		}
	}
	return plan, nil
}

// ListPlans returns catalog entries, optionally only enabled ones.
func (s *Service) ListPlans(enabledOnly bool) ([]models.Plan, error) {
	return s.repo.List(enabledOnly)
}

// ListAtRegistration returns enabled plans flagged for auto-enrollment of
// new accounts.
func (s *Service) ListAtRegistration() ([]models.Plan, error) {
	return s.repo.ListAtRegistration()
}

// Save validates and persists a plan. origID is the id the record was
// loaded under; empty origID means a create. When the id changed, all
// subscription rows referencing origID are rewritten to the new id before
// the plan row is touched, so a failed rename never orphans them.
func (s *Service) Save(plan *models.Plan, origID string) error {
	plan.ID = strings.TrimSpace(plan.ID)
	origID = strings.TrimSpace(origID)
	if plan.ID == "" {
		plan.ID = generateID()
	}

	normalize(plan)
	if err := plan.Validate(); err != nil {
		return asValidationError(err)
	}

	isNew := origID == ""
	renamed := !isNew && plan.ID != origID

	if isNew || renamed {
		exists, err := s.repo.Exists(plan.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrExists
		}
	}

	switch {
	case isNew:
		if err := s.repo.Create(plan); err != nil {
			return err
		}
	case renamed:
		if err := s.repo.Rename(origID, plan.ID); err != nil {
			return err
		}
		if err := s.repo.Update(plan); err != nil {
			return err
		}
		// Subscription rows changed too.
		if err := s.cache.ClearTag(cache.TagSubscriptions); err != nil {
			log.Warnf("subscription cache clear failed after rename of %s: %v", origID, err)
		}
	default:
		if err := s.repo.Update(plan); err != nil {
			return err
		}
	}

	if err := s.cache.ClearTag(cache.TagPlans); err != nil {
		log.Warnf("plan cache clear failed after save of %s: %v", plan.ID, err)
	}
	return nil
}

// Delete removes a plan. Fails with ErrInUse while any subscription still
// references it; this is an administrative safety check.
func (s *Service) Delete(id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.GetPlan(id); err != nil {
		return err
	}

	count, err := s.repo.CountSubscriptions(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrInUse
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if err := s.cache.ClearTag(cache.TagPlans); err != nil {
		log.Warnf("plan cache clear failed after delete of %s: %v", id, err)
	}
	return nil
}

// ToggleEnabled flips the enabled flag and returns the new state.
func (s *Service) ToggleEnabled(id string) (bool, error) {
	plan, err := s.GetPlan(id)
	if err != nil {
		return false, err
	}
	plan.Enabled = !plan.Enabled
	if err := s.repo.Update(plan); err != nil {
		return false, err
	}
	if err := s.cache.ClearTag(cache.TagPlans); err != nil {
		log.Warnf("plan cache clear failed after toggle of %s: %v", id, err)
	}
	return plan.Enabled, nil
}

// IsUsed reports whether any subscription references the plan.
func (s *Service) IsUsed(id string) (bool, error) {
	count, err := s.repo.CountSubscriptions(id)
	return count > 0, err
}

func normalize(plan *models.Plan) {
	plan.Name = strings.TrimSpace(plan.Name)
	plan.DurationType = models.NormalizeDurationType(plan.DurationType)
	plan.BonusDurationType = models.NormalizeDurationType(plan.BonusDurationType)
	if plan.BonusDurationType == models.DurationFixed {
		plan.BonusDurationType = models.DurationMonth
	}
	plan.UpgradeFromID = strings.TrimSpace(plan.UpgradeFromID)
	// Prices are stored with exactly two decimal places.
	plan.Price = plan.Price.Round(2)
	plan.UpgradePrice = plan.UpgradePrice.Round(2)
}

func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, fe.Field()+" failed "+fe.Tag())
		}
		return &ValidationError{Problems: problems}
	}
	return &ValidationError{Problems: []string{err.Error()}}
}

// generateID makes a short random plan id for admins who leave it blank.
func generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
