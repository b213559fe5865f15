package models

// Session is the per-visitor state. The zero value is the logged-out session.
type Session struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username"`
}
