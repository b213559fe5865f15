package services_test

import (
	"context"
	"fmt"
	"testing"

	"goldpredict/internal/models"
	"goldpredict/internal/repositories"
	"goldpredict/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Load() (map[string]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.User), args.Error(1)
}

func (m *MockUserRepository) Exists(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Get(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Save(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

func newAuthService(repo repositories.UserRepository, pub services.EventPublisher) *services.AuthService {
	return services.NewAuthService(repo, services.SHA256Hasher{}, pub, zap.NewNop())
}

func validForm() models.SignUpForm {
	return models.SignUpForm{
		Username:        "alice",
		Email:           "a@x.com",
		Password:        "pw123",
		ConfirmPassword: "pw123",
	}
}

func TestAuthService_SaveUserThenAuthenticate(t *testing.T) {
	cases := []struct{ username, email, password string }{
		{"alice", "a@x.com", "pw123"},
		{"bob", "b@x.com", ""},
		{"cécile", "c@x.com", "pässwörd ünïcode"},
		{"dave", "d@x.com", "with spaces and symbols !@#$%^&*()"},
	}
	for _, tc := range cases {
		t.Run(tc.username, func(t *testing.T) {
			svc := newAuthService(repositories.NewMemoryUserRepository(), nil)

			require.NoError(t, svc.SaveUser(tc.username, tc.email, tc.password))
			ok, err := svc.Authenticate(tc.username, tc.password)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = svc.Authenticate(tc.username, tc.password+"x")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestAuthService_AuthenticateAbsentUser(t *testing.T) {
	svc := newAuthService(repositories.NewMemoryUserRepository(), nil)
	require.NoError(t, svc.SaveUser("alice", "a@x.com", "pw123"))

	for _, name := range []string{"bob", "", "Alice", "alice "} {
		ok, err := svc.Authenticate(name, "pw123")
		require.NoError(t, err)
		assert.False(t, ok, name)
	}
}

func TestAuthService_AuthenticateStoreError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("Load").Return(nil, fmt.Errorf("disk on fire")).Once()

	svc := newAuthService(mockRepo, nil)
	ok, err := svc.Authenticate("alice", "pw123")
	assert.Error(t, err)
	assert.False(t, ok)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_SaveUserStoresDigest(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("Save", mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" && u.Email == "a@x.com" &&
			u.PasswordDigest == "23d47445adfb8991789b459b6ba1b974d727d310aa9d80b7c2875b9430c0ba25"
	})).Return(nil).Once()

	svc := newAuthService(mockRepo, nil)
	require.NoError(t, svc.SaveUser("alice", "a@x.com", "pw123"))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockPub := new(MockPublisher)
	svc := newAuthService(mockRepo, mockPub)

	// Test successful registration
	mockRepo.On("Exists", "alice").Return(false, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	mockPub.On("Publish", mock.Anything, services.EventUserRegistered, mock.Anything).Return(nil).Once()

	err := svc.Register(context.Background(), validForm())
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)

	// Test username already taken
	mockRepo.On("Exists", "alice").Return(true, nil).Once()
	err = svc.Register(context.Background(), validForm())
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	assert.Contains(t, err.Error(), "username 'alice'")
	mockRepo.AssertExpectations(t)

	// Test a concurrent signup winning between the check and the insert
	mockRepo.On("Exists", "alice").Return(false, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(repositories.ErrUsernameTaken).Once()
	err = svc.Register(context.Background(), validForm())
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	mockRepo.AssertExpectations(t)
	mockPub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		edit func(f *models.SignUpForm)
		want error
	}{
		{"missing username", func(f *models.SignUpForm) { f.Username = "" }, services.ErrMissingFields},
		{"missing email", func(f *models.SignUpForm) { f.Email = "" }, services.ErrMissingFields},
		{"missing password", func(f *models.SignUpForm) { f.Password = "" }, services.ErrMissingFields},
		{"missing confirmation", func(f *models.SignUpForm) { f.ConfirmPassword = "" }, services.ErrMissingFields},
		{"mismatch", func(f *models.SignUpForm) { f.ConfirmPassword = "pw124" }, services.ErrPasswordMismatch},
		{"missing field wins over mismatch", func(f *models.SignUpForm) {
			f.Email = ""
			f.ConfirmPassword = "other"
		}, services.ErrMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No repository call is expected: validation happens first.
			mockRepo := new(MockUserRepository)
			svc := newAuthService(mockRepo, nil)

			form := validForm()
			tt.edit(&form)
			err := svc.Register(context.Background(), form)
			assert.ErrorIs(t, err, tt.want)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_RegisterKeepsExistingRecord(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	svc := newAuthService(repo, nil)
	require.NoError(t, svc.Register(context.Background(), validForm()))

	other := models.SignUpForm{Username: "alice", Email: "evil@x.com", Password: "hijack", ConfirmPassword: "hijack"}
	err := svc.Register(context.Background(), other)
	assert.ErrorIs(t, err, services.ErrUsernameTaken)

	user, err := repo.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	ok, err := svc.Authenticate("alice", "pw123")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Authenticate("alice", "hijack")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_PublishFailureIsNotFatal(t *testing.T) {
	mockPub := new(MockPublisher)
	mockPub.On("Publish", mock.Anything, services.EventUserRegistered, mock.Anything).Return(fmt.Errorf("broker down")).Once()

	svc := newAuthService(repositories.NewMemoryUserRepository(), mockPub)
	assert.NoError(t, svc.Register(context.Background(), validForm()))
	mockPub.AssertExpectations(t)
}
