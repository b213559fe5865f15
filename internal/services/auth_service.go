package services

import (
	"context"
	"errors"
	"fmt"

	"goldpredict/internal/models"
	"goldpredict/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	// ErrMissingFields means at least one signup field was empty.
	ErrMissingFields = errors.New("all fields are required")
	// ErrPasswordMismatch means password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrUsernameTaken means the username is already registered.
	ErrUsernameTaken = repositories.ErrUsernameTaken
)

// AuthService handles registration and credential checks against the credential store.
type AuthService struct {
	userRepo  repositories.UserRepository
	hasher    PasswordHasher
	publisher EventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService. A nil publisher disables events.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, publisher EventPublisher, logger *zap.Logger) *AuthService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
	}
}

// HashPassword returns the stored form of password.
func (s *AuthService) HashPassword(password string) (string, error) {
	return s.hasher.Hash(password)
}

// Exists reports whether username is registered.
func (s *AuthService) Exists(username string) (bool, error) {
	exists, err := s.userRepo.Exists(username)
	if err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", username, err)
	}
	return exists, nil
}

// SaveUser digests password and writes the record, overwriting any existing
// one. Callers must check Exists first; Register does this atomically.
func (s *AuthService) SaveUser(username, email, password string) error {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	user := &models.User{Username: username, Email: email, PasswordDigest: digest}
	if err := s.userRepo.Save(user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Authenticate reports whether username is stored and password matches its digest.
func (s *AuthService) Authenticate(username, password string) (bool, error) {
	users, err := s.userRepo.Load()
	if err != nil {
		return false, fmt.Errorf("failed to load users: %w", err)
	}
	user, ok := users[username]
	if !ok {
		return false, nil
	}
	return s.hasher.Verify(user.PasswordDigest, password), nil
}

// Register validates the signup form and creates the account.
func (s *AuthService) Register(ctx context.Context, form models.SignUpForm) error {
	if err := s.validateForm(form); err != nil {
		return err
	}

	exists, err := s.Exists(form.Username)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("username '%s': %w", form.Username, ErrUsernameTaken)
	}

	digest, err := s.hasher.Hash(form.Password)
	if err != nil {
		return err
	}
	user := &models.User{Username: form.Username, Email: form.Email, PasswordDigest: digest}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return fmt.Errorf("username '%s': %w", form.Username, ErrUsernameTaken)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", user.Username))
	s.publish(ctx, EventUserRegistered, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
	return nil
}

// validateForm maps validator failures onto the signup errors, missing
// fields taking precedence over a mismatched confirmation.
func (s *AuthService) validateForm(form models.SignUpForm) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate signup form: %w", err)
	}
	mismatch := false
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			return ErrMissingFields
		case "eqfield":
			mismatch = true
		}
	}
	if mismatch {
		return ErrPasswordMismatch
	}
	return fmt.Errorf("invalid signup form: %w", err)
}

func (s *AuthService) publish(ctx context.Context, eventType string, payload any) {
	body, err := newEventBody(eventType, payload)
	if err != nil {
		s.logger.Warn("failed to build event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, eventType, body); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
