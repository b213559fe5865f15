package repositories

import (
	"errors"
	"fmt"

	"goldpredict/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Load retrieves every user from the database.
func (r *GORMUserRepository) Load() (map[string]models.User, error) {
	var users []models.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	out := make(map[string]models.User, len(users))
	for _, u := range users {
		out[u.Username] = u
	}
	return out, nil
}

// Exists reports whether a row exists for username.
func (r *GORMUserRepository) Exists(username string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", username, err)
	}
	return count > 0, nil
}

// Get retrieves a user by their username from the database.
func (r *GORMUserRepository) Get(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", username, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// Save upserts the user row.
func (r *GORMUserRepository) Save(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.Username, err)
	}
	return nil
}

// Create inserts the user inside a transaction; the primary key on username
// rejects a concurrent insert that slipped past the existence check.
func (r *GORMUserRepository) Create(user *models.User) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		return tx.Create(user).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("user %s: %w", user.Username, ErrUsernameTaken)
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}
}
