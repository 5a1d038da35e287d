package repository

import (
	"errors"

	"github.com/energy-data-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository handles user data access
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Email uniqueness is enforced by the unique
// index rather than a pre-check, so two concurrent registrations with the
// same email cannot both succeed; the loser gets ErrDuplicateEmail.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail retrieves a user by email (case-sensitive)
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	result := r.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// ListEmails returns the emails of all registered users ordered by id
func (r *UserRepository) ListEmails() ([]string, error) {
	var emails []string
	result := r.db.Model(&models.User{}).Order("id").Pluck("email", &emails)
	if result.Error != nil {
		return nil, result.Error
	}
	return emails, nil
}
