// Package pages is the page state machine of the application. Each call to
// Controller.Handle maps the current session and one user action to the next
// session and the view to render; it keeps no state of its own.
package pages

import (
	"context"
	"errors"
	"fmt"

	"goldpredict/internal/models"
	"goldpredict/internal/services"
)

// User facing messages.
const (
	MsgLoggedIn         = "Logged in successfully!"
	MsgInvalidLogin     = "Invalid credentials"
	MsgLoggedOut        = "Logged out successfully."
	MsgMissingFields    = "All fields are required."
	MsgPasswordMismatch = "Passwords do not match."
	MsgUsernameTaken    = "Username already exists."
	MsgAccountCreated   = "Account created successfully! You can now login."
	MsgLoginToPredict   = "Please login to access the prediction form."
	MsgPredicted        = "Prediction Successful!"
	MsgOutOfRange       = "Inputs are out of range, no prediction could be made."
	MsgNoImages         = "No images found in 'plots' folder."

	homeIntro = "Predict the price of gold using market index values. " +
		"The model uses SPX, USO, SLV and EUR/USD rates to forecast gold prices in both USD and EUR."
	homeImage = "/assets/gold.jpg"
)

// Action is a user interaction. Implementations are Navigate, Login, SignUp,
// Predict and Logout.
type Action interface {
	action()
}

// Navigate selects a sidebar entry.
type Navigate struct{ To Menu }

// Login submits the login form.
type Login struct{ Form models.LoginForm }

// SignUp submits the registration form.
type SignUp struct{ Form models.SignUpForm }

// Predict submits the prediction form on the home page.
type Predict struct{ Request models.PredictionRequest }

// Logout ends the session and shows the Return page.
type Logout struct{ Return Menu }

func (Navigate) action() {}
func (Login) action()    {}
func (SignUp) action()   {}
func (Predict) action()  {}
func (Logout) action()   {}

// Authenticator checks and registers credentials.
type Authenticator interface {
	Authenticate(username, password string) (bool, error)
	Register(ctx context.Context, form models.SignUpForm) error
}

// Predictor estimates gold prices.
type Predictor interface {
	Predict(ctx context.Context, username string, req models.PredictionRequest) (*models.PredictionResponse, error)
}

// Gallery lists dashboard images.
type Gallery interface {
	Images() ([]models.GalleryImage, error)
}

// Controller dispatches actions to the collaborators.
type Controller struct {
	auth      Authenticator
	predictor Predictor
	gallery   Gallery
}

// NewController creates a new Controller.
func NewController(auth Authenticator, predictor Predictor, gallery Gallery) *Controller {
	return &Controller{auth: auth, predictor: predictor, gallery: gallery}
}

// Handle applies act to session. The returned error is reserved for
// infrastructure failures; rejected input is reported through the view.
func (c *Controller) Handle(ctx context.Context, session models.Session, act Action) (models.Session, View, error) {
	switch a := act.(type) {
	case Navigate:
		view, err := c.render(a.To, session)
		return session, view, err

	case Login:
		ok, err := c.auth.Authenticate(a.Form.Username, a.Form.Password)
		if err != nil {
			return session, nil, fmt.Errorf("login: %w", err)
		}
		view := loginView()
		if !ok {
			view.Outcome = OutcomeUnauthorized
			view.notify(LevelError, MsgInvalidLogin)
			return session, view, nil
		}
		view.notify(LevelSuccess, MsgLoggedIn)
		return models.Session{LoggedIn: true, Username: a.Form.Username}, view, nil

	case SignUp:
		view := signUpView()
		err := c.auth.Register(ctx, a.Form)
		switch {
		case err == nil:
			view.notify(LevelSuccess, MsgAccountCreated)
		case errors.Is(err, services.ErrMissingFields):
			view.Outcome = OutcomeInvalid
			view.notify(LevelWarning, MsgMissingFields)
		case errors.Is(err, services.ErrPasswordMismatch):
			view.Outcome = OutcomeInvalid
			view.notify(LevelError, MsgPasswordMismatch)
		case errors.Is(err, services.ErrUsernameTaken):
			view.Outcome = OutcomeConflict
			view.notify(LevelError, MsgUsernameTaken)
		default:
			return session, nil, fmt.Errorf("signup: %w", err)
		}
		return session, view, nil

	case Predict:
		view := homeView(session)
		if !session.LoggedIn {
			view.Outcome = OutcomeUnauthorized
			return session, view, nil
		}
		resp, err := c.predictor.Predict(ctx, session.Username, a.Request)
		if errors.Is(err, services.ErrPredictionOutOfRange) {
			view.Outcome = OutcomeInvalid
			view.notify(LevelError, MsgOutOfRange)
			return session, view, nil
		}
		if err != nil {
			return session, nil, fmt.Errorf("predict: %w", err)
		}
		view.Prediction = resp
		view.notify(LevelSuccess, MsgPredicted)
		return session, view, nil

	case Logout:
		session = models.Session{}
		view, err := c.render(a.Return, session)
		if err != nil {
			return session, nil, err
		}
		h := view.header()
		h.Notices = append([]Notice{{Level: LevelSuccess, Message: MsgLoggedOut}}, h.Notices...)
		return session, view, nil

	default:
		return session, nil, fmt.Errorf("unknown action %T", act)
	}
}

func (c *Controller) render(menu Menu, session models.Session) (View, error) {
	switch menu {
	case MenuHome:
		return homeView(session), nil
	case MenuLogin:
		return loginView(), nil
	case MenuSignUp:
		return signUpView(), nil
	case MenuDashboard:
		v, err := c.dashboardView()
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown menu %v", menu)
	}
}

func homeView(session models.Session) *HomeView {
	v := &HomeView{
		Header: Header{Page: MenuHome, Title: "Welcome to Gold Price Prediction App"},
		Intro:  homeIntro,
		Image:  homeImage,
	}
	if session.LoggedIn {
		v.Greeting = fmt.Sprintf("Welcome, %s! You are logged in.", session.Username)
		v.FormEnabled = true
	} else {
		v.notify(LevelInfo, MsgLoginToPredict)
	}
	return v
}

func loginView() *LoginView {
	return &LoginView{Header: Header{Page: MenuLogin, Title: "Login"}}
}

func signUpView() *SignUpView {
	return &SignUpView{Header: Header{Page: MenuSignUp, Title: "Sign Up"}}
}

func (c *Controller) dashboardView() (*DashboardView, error) {
	images, err := c.gallery.Images()
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	v := &DashboardView{
		Header: Header{Page: MenuDashboard, Title: "Dashboard - Gold Price Visualizations"},
		Rows:   services.Grid(images),
	}
	if len(images) == 0 {
		v.notify(LevelWarning, MsgNoImages)
	}
	return v, nil
}
