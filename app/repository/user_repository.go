package repository

import (
	"strings"

	"github.com/memberhive/memberhive/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	if user.ReferralToken == "" {
		user.ReferralToken = models.NewReferralToken()
	}
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByReferralToken resolves a referral token to its owning user
func (r *userRepository) GetByReferralToken(token string) (*models.User, error) {
	var user models.User
	err := r.db.Where("referral_token = ?", strings.TrimSpace(token)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
