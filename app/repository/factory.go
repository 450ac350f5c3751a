package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles one instance of every repository.
type Repositories struct {
	Plan         PlanRepository
	Subscription SubscriptionRepository
	History      HistoryRepository
	Referral     ReferralRepository
	User         UserRepository
}

// NewRepositories creates all repositories over one DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
		History:      NewHistoryRepository(db),
		Referral:     NewReferralRepository(db),
		User:         NewUserRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetPlanRepository returns the plan repository instance
func (f *Factory) GetPlanRepository() PlanRepository {
	return f.GetRepositories().Plan
}

// GetSubscriptionRepository returns the subscription repository instance
func (f *Factory) GetSubscriptionRepository() SubscriptionRepository {
	return f.GetRepositories().Subscription
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}
