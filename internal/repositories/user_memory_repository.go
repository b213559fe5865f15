package repositories

import (
	"fmt"
	"sync"

	"goldpredict/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Load returns a copy of all users.
func (r *MemoryUserRepository) Load() (map[string]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.User, len(r.users))
	for k, v := range r.users {
		out[k] = v
	}
	return out, nil
}

// Exists reports whether username is stored.
func (r *MemoryUserRepository) Exists(username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[username]
	return ok, nil
}

// Get returns a user by username.
func (r *MemoryUserRepository) Get(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrUserNotFound)
	}
	return &user, nil
}

// Save inserts or overwrites a user.
func (r *MemoryUserRepository) Save(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.Username] = *user
	return nil
}

// Create adds a user if the username is free.
func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return fmt.Errorf("user %s: %w", user.Username, ErrUsernameTaken)
	}
	r.users[user.Username] = *user
	return nil
}
