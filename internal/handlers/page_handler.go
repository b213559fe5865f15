package handlers

import (
	"goldpredict/internal/middleware"
	"goldpredict/internal/models"
	"goldpredict/internal/pages"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PageHandler serves the sidebar, the page views and the prediction form.
type PageHandler struct {
	renderer *Renderer
	logger   *zap.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer *Renderer, logger *zap.Logger) *PageHandler {
	return &PageHandler{renderer: renderer, logger: logger}
}

// RegisterRoutes registers the page routes with the Fiber app.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/menu", h.HandleMenu)
	router.Get("/pages/:menu", h.HandlePage)
	router.Post("/predict", h.HandlePredict)
}

// HandleMenu lists the sidebar entries and the current session.
func (h *PageHandler) HandleMenu(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"menu":    pages.Menus(),
		"session": middleware.Session(c),
	})
}

// HandlePage renders one sidebar entry.
func (h *PageHandler) HandlePage(c *fiber.Ctx) error {
	menu, err := pages.ParseMenu(c.Params("menu"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Page not found",
			"error":   err.Error(),
		})
	}
	return h.renderer.Dispatch(c, pages.Navigate{To: menu})
}

// HandlePredict runs the model for a logged-in visitor.
func (h *PageHandler) HandlePredict(c *fiber.Ctx) error {
	var req models.PredictionRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("error parsing prediction request body", zap.Error(err))
		return badBody(c, err)
	}
	return h.renderer.Dispatch(c, pages.Predict{Request: req})
}
