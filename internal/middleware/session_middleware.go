package middleware

import (
	"strings"

	"goldpredict/internal/models"
	"goldpredict/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

const (
	sessionKey = "session"
	tokenKey   = "session_token"
)

// SessionFromRequest decodes the session token from the cookie or the
// Authorization header. A missing or invalid token leaves the visitor logged out.
func SessionFromRequest(sessions *services.SessionService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := models.Session{}

		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString != "" {
			parsed, err := sessions.Parse(tokenString)
			if err != nil {
				logger.Debug("ignoring session token", zap.Error(err))
			} else {
				session = parsed
				c.Locals(tokenKey, tokenString)
			}
		}

		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// Session returns the session stored by SessionFromRequest.
func Session(c *fiber.Ctx) models.Session {
	session, _ := c.Locals(sessionKey).(models.Session)
	return session
}

// Token returns the token the session was read from, or "" when the
// visitor is logged out.
func Token(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}
