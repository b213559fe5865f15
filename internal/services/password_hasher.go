package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by NewPasswordHasher.
const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// PasswordHasher turns passwords into stored digests and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(digest, password string) bool
}

// NewPasswordHasher returns the hasher registered under name.
func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case HasherSHA256, "":
		return SHA256Hasher{}, nil
	case HasherBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// SHA256Hasher produces unsalted lower-case hex SHA-256 digests, the format
// of existing users.json stores. Not suitable for production credentials.
type SHA256Hasher struct{}

// Hash returns the 64-character hex digest of password.
func (SHA256Hasher) Hash(password string) (string, error) {
	return sha256Hex(password), nil
}

// Verify compares in constant time.
func (SHA256Hasher) Verify(digest, password string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(sha256Hex(password))) == 1
}

func sha256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// BcryptHasher writes bcrypt digests but still accepts SHA-256 digests
// written before the switch, so one store may hold both.
type BcryptHasher struct {
	Cost int
}

// Hash returns a salted bcrypt digest.
func (h BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify checks password against either digest format.
func (BcryptHasher) Verify(digest, password string) bool {
	if strings.HasPrefix(digest, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	}
	return SHA256Hasher{}.Verify(digest, password)
}
