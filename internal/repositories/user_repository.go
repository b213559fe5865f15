package repositories

import (
	"errors"

	"goldpredict/internal/models"
)

var (
	// ErrUserNotFound is returned by Get when no record exists for the username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned by Create when the username is already stored.
	ErrUsernameTaken = errors.New("username already exists")
)

// UserRepository defines the interface for credential store access.
type UserRepository interface {
	// Load returns the whole store keyed by username.
	Load() (map[string]models.User, error)
	Exists(username string) (bool, error)
	Get(username string) (*models.User, error)
	// Save inserts or overwrites the record for user.Username.
	Save(user *models.User) error
	// Create inserts user only if the username is free, atomically with the check.
	Create(user *models.User) error
}
