package repositories_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"goldpredict/internal/models"
	"goldpredict/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileRepo(t *testing.T) (*repositories.JSONFileUserRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	repo, err := repositories.NewJSONFileUserRepository(path)
	require.NoError(t, err)
	return repo, path
}

func TestJSONFileUserRepository_InitialisesEmptyFile(t *testing.T) {
	_, path := newFileRepo(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestJSONFileUserRepository_SaveAndLoad(t *testing.T) {
	repo, path := newFileRepo(t)

	err := repo.Save(&models.User{Username: "alice", Email: "a@x.com", PasswordDigest: "d1"})
	require.NoError(t, err)

	users, err := repo.Load()
	require.NoError(t, err)
	require.Contains(t, users, "alice")
	assert.Equal(t, "a@x.com", users["alice"].Email)
	assert.Equal(t, "d1", users["alice"].PasswordDigest)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"alice": {"email": "a@x.com", "password": "d1"}}`, string(data))
	assert.Contains(t, string(data), "\n    \"alice\"")

	exists, err := repo.Exists("alice")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.Exists("bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestJSONFileUserRepository_SaveOverwrites(t *testing.T) {
	repo, _ := newFileRepo(t)

	require.NoError(t, repo.Save(&models.User{Username: "alice", Email: "old@x.com", PasswordDigest: "d1"}))
	require.NoError(t, repo.Save(&models.User{Username: "alice", Email: "new@x.com", PasswordDigest: "d2"}))

	user, err := repo.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)
	assert.Equal(t, "d2", user.PasswordDigest)
}

func TestJSONFileUserRepository_CreateRejectsDuplicate(t *testing.T) {
	repo, _ := newFileRepo(t)

	require.NoError(t, repo.Create(&models.User{Username: "alice", Email: "a@x.com", PasswordDigest: "d1"}))
	err := repo.Create(&models.User{Username: "alice", Email: "evil@x.com", PasswordDigest: "d2"})
	assert.ErrorIs(t, err, repositories.ErrUsernameTaken)

	user, err := repo.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "d1", user.PasswordDigest)
}

func TestJSONFileUserRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	repo, _ := newFileRepo(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(&models.User{Username: "alice", Email: "a@x.com", PasswordDigest: "d"})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repositories.ErrUsernameTaken)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestJSONFileUserRepository_GetMissing(t *testing.T) {
	repo, _ := newFileRepo(t)

	_, err := repo.Get("ghost")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestJSONFileUserRepository_ReadsExistingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	content := `{
    "bob": {
        "email": "b@x.com",
        "password": "23d47445adfb8991789b459b6ba1b974d727d310aa9d80b7c2875b9430c0ba25"
    }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	repo, err := repositories.NewJSONFileUserRepository(path)
	require.NoError(t, err)

	user, err := repo.Get("bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "b@x.com", user.Email)
}

func TestJSONFileUserRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo, err := repositories.NewJSONFileUserRepository(path)
	require.NoError(t, err)

	_, err = repo.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode user file")
}
