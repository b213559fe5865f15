package handlers

import (
	"time"

	"goldpredict/internal/middleware"
	"goldpredict/internal/models"
	"goldpredict/internal/pages"
	"goldpredict/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Renderer runs actions through the page controller and writes the result.
type Renderer struct {
	controller *pages.Controller
	sessions   *services.SessionService
	logger     *zap.Logger
}

// NewRenderer creates a new Renderer.
func NewRenderer(controller *pages.Controller, sessions *services.SessionService, logger *zap.Logger) *Renderer {
	return &Renderer{controller: controller, sessions: sessions, logger: logger}
}

// PageResponse is the body of every page response.
type PageResponse struct {
	Session models.Session `json:"session"`
	View    pages.View     `json:"view"`
	Token   string         `json:"token,omitempty"`
}

var outcomeStatus = map[pages.Outcome]int{
	pages.OutcomeOK:           fiber.StatusOK,
	pages.OutcomeInvalid:      fiber.StatusBadRequest,
	pages.OutcomeConflict:     fiber.StatusConflict,
	pages.OutcomeUnauthorized: fiber.StatusUnauthorized,
}

// Dispatch applies act to the request's session and renders the result.
func (r *Renderer) Dispatch(c *fiber.Ctx, act pages.Action) error {
	before := middleware.Session(c)

	after, view, err := r.controller.Handle(c.UserContext(), before, act)
	if err != nil {
		r.logger.Error("action failed", zap.String("action", actionName(act)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process request",
			"error":   err.Error(),
		})
	}

	// The presented token no longer describes the session once it changes.
	if after != before {
		if token := middleware.Token(c); token != "" {
			if err := r.sessions.Revoke(token); err != nil {
				r.logger.Warn("failed to revoke session token", zap.Error(err))
			}
		}
	}

	resp := PageResponse{Session: after, View: view}
	switch {
	case after.LoggedIn && after != before:
		token, err := r.sessions.Issue(after)
		if err != nil {
			r.logger.Error("failed to issue session token", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not start session",
				"error":   err.Error(),
			})
		}
		c.Cookie(&fiber.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Expires:  time.Now().Add(r.sessions.TTL()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		resp.Token = token
	case !after.LoggedIn && before.LoggedIn:
		c.ClearCookie(middleware.SessionCookie)
	}

	status, ok := outcomeStatus[pages.HeaderOf(view).Outcome]
	if !ok {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(resp)
}

func actionName(act pages.Action) string {
	switch act.(type) {
	case pages.Navigate:
		return "navigate"
	case pages.Login:
		return "login"
	case pages.SignUp:
		return "signup"
	case pages.Predict:
		return "predict"
	case pages.Logout:
		return "logout"
	default:
		return "unknown"
	}
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
