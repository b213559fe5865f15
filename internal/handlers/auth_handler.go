package handlers

import (
	"goldpredict/internal/models"
	"goldpredict/internal/pages"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles the login, signup and logout actions.
type AuthHandler struct {
	renderer *Renderer
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(renderer *Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{renderer: renderer, logger: logger}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/signup", h.HandleSignUp)
	authRoutes.Post("/logout", h.HandleLogout)
}

// HandleLogin checks the credentials and starts a session on success.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var form models.LoginForm
	if err := c.BodyParser(&form); err != nil {
		h.logger.Debug("error parsing login request body", zap.Error(err))
		return badBody(c, err)
	}
	return h.renderer.Dispatch(c, pages.Login{Form: form})
}

// HandleSignUp registers a new account.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var form models.SignUpForm
	if err := c.BodyParser(&form); err != nil {
		h.logger.Debug("error parsing signup request body", zap.Error(err))
		return badBody(c, err)
	}
	return h.renderer.Dispatch(c, pages.SignUp{Form: form})
}

// HandleLogout clears the session. The optional "return" query names the page to show.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	ret := pages.MenuHome
	if q := c.Query("return"); q != "" {
		m, err := pages.ParseMenu(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unknown page",
				"error":   err.Error(),
			})
		}
		ret = m
	}
	return h.renderer.Dispatch(c, pages.Logout{Return: ret})
}
