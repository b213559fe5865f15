package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"goldpredict/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// ErrTokenRevoked is returned by Parse for a token ended by Revoke.
var ErrTokenRevoked = errors.New("token revoked")

// SessionService signs sessions into JWTs and reads them back.
type SessionService struct {
	jwtSecret  []byte
	tokenDurat time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

// NewSessionService creates a new SessionService.
func NewSessionService(jwtSecret string, ttl time.Duration) *SessionService {
	return &SessionService{
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: ttl,
		revoked:    make(map[string]time.Time),
	}
}

// TTL is the lifetime of issued tokens.
func (s *SessionService) TTL() time.Duration {
	return s.tokenDurat
}

// Issue returns a signed token for a logged-in session.
func (s *SessionService) Issue(session models.Session) (string, error) {
	if !session.LoggedIn {
		return "", fmt.Errorf("cannot issue token for a logged-out session")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":      uuid.NewString(),
		"username": session.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Parse validates tokenString and returns the logged-in session it carries.
func (s *SessionService) Parse(tokenString string) (models.Session, error) {
	c, err := s.claims(tokenString)
	if err != nil {
		return models.Session{}, err
	}

	s.mu.Lock()
	_, revoked := s.revoked[c.id]
	s.mu.Unlock()
	if revoked {
		return models.Session{}, ErrTokenRevoked
	}
	return models.Session{LoggedIn: true, Username: c.username}, nil
}

// Revoke ends the session carried by tokenString. Parse rejects the token
// from then on; the entry is forgotten once the token would have expired anyway.
func (s *SessionService) Revoke(tokenString string) error {
	c, err := s.claims(tokenString)
	if err != nil {
		return err
	}

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[c.id] = c.expires
	return nil
}

type tokenClaims struct {
	id       string
	username string
	expires  time.Time
}

func (s *SessionService) claims(tokenString string) (tokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return tokenClaims{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return tokenClaims{}, fmt.Errorf("invalid token")
	}
	c := tokenClaims{}
	c.username, _ = claims["username"].(string)
	if c.username == "" {
		return tokenClaims{}, fmt.Errorf("invalid token: missing username")
	}
	c.id, _ = claims["jti"].(string)
	if c.id == "" {
		return tokenClaims{}, fmt.Errorf("invalid token: missing id")
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return tokenClaims{}, fmt.Errorf("invalid token: missing expiry")
	}
	c.expires = time.Unix(int64(exp), 0)
	return c, nil
}
