package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"goldpredict/internal/models"
)

// fileRecord is the on-disk shape of one user: {"email": ..., "password": <digest>}.
type fileRecord struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// JSONFileUserRepository keeps every user in a single JSON object on disk.
// The whole file is read on each call and rewritten on each mutation.
type JSONFileUserRepository struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileUserRepository creates the repository and initialises the file
// with an empty object when it does not exist yet.
func NewJSONFileUserRepository(path string) (*JSONFileUserRepository, error) {
	r := &JSONFileUserRepository{path: path}
	if err := r.ensureFile(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *JSONFileUserRepository) ensureFile() error {
	_, err := os.Stat(r.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat user file %s: %w", r.path, err)
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for user file: %w", err)
		}
	}
	return r.write(map[string]models.User{})
}

// Load returns the full mapping.
func (r *JSONFileUserRepository) Load() (map[string]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

// Exists reports whether username has a record.
func (r *JSONFileUserRepository) Exists(username string) (bool, error) {
	users, err := r.Load()
	if err != nil {
		return false, err
	}
	_, ok := users[username]
	return ok, nil
}

// Get retrieves a user by username.
func (r *JSONFileUserRepository) Get(username string) (*models.User, error) {
	users, err := r.Load()
	if err != nil {
		return nil, err
	}
	user, ok := users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrUserNotFound)
	}
	return &user, nil
}

// Save inserts or overwrites the record and rewrites the file.
func (r *JSONFileUserRepository) Save(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return err
	}
	users[user.Username] = *user
	return r.write(users)
}

// Create holds the lock across load, check, insert and save so two signups
// for the same username in this process cannot both succeed.
func (r *JSONFileUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := users[user.Username]; ok {
		return fmt.Errorf("user %s: %w", user.Username, ErrUsernameTaken)
	}
	users[user.Username] = *user
	return r.write(users)
}

func (r *JSONFileUserRepository) read() (map[string]models.User, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user file %s: %w", r.path, err)
	}

	records := make(map[string]fileRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode user file %s: %w", r.path, err)
	}

	users := make(map[string]models.User, len(records))
	for name, rec := range records {
		users[name] = models.User{Username: name, Email: rec.Email, PasswordDigest: rec.Password}
	}
	return users, nil
}

// write replaces the file through a temp file and rename so readers never see a partial object.
func (r *JSONFileUserRepository) write(users map[string]models.User) error {
	records := make(map[string]fileRecord, len(users))
	for name, u := range users {
		records[name] = fileRecord{Email: u.Email, Password: u.PasswordDigest}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp user file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp user file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp user file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace user file %s: %w", r.path, err)
	}
	return nil
}
