package pages

import "goldpredict/internal/models"

// Level is the severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a message shown above the page content.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Outcome classifies the action that produced a view, for transports that
// need a status code.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeInvalid
	OutcomeConflict
	OutcomeUnauthorized
)

// Header is shared by every view.
type Header struct {
	Page    Menu     `json:"page"`
	Title   string   `json:"title"`
	Notices []Notice `json:"notices"`
	Outcome Outcome  `json:"-"`
}

func (h *Header) header() *Header { return h }

func (h *Header) notify(level Level, msg string) {
	h.Notices = append(h.Notices, Notice{Level: level, Message: msg})
}

// View is one rendered page. Implementations are HomeView, LoginView,
// SignUpView and DashboardView.
type View interface {
	header() *Header
}

// HeaderOf returns the common part of v.
func HeaderOf(v View) Header {
	return *v.header()
}

// HomeView is the landing page with the prediction form.
type HomeView struct {
	Header
	Intro       string                     `json:"intro"`
	Image       string                     `json:"image"`
	Greeting    string                     `json:"greeting,omitempty"`
	FormEnabled bool                       `json:"form_enabled"`
	Prediction  *models.PredictionResponse `json:"prediction,omitempty"`
}

// LoginView is the login form.
type LoginView struct {
	Header
}

// SignUpView is the registration form.
type SignUpView struct {
	Header
}

// DashboardView shows the plot gallery.
type DashboardView struct {
	Header
	Rows [][]models.GalleryImage `json:"rows"`
}
