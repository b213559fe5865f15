package models

import "time"

// User is a registered account. Username is the unique key.
type User struct {
	Username       string    `json:"username" gorm:"primaryKey;type:varchar(100)"`
	Email          string    `json:"email" gorm:"type:varchar(255)"`
	PasswordDigest string    `json:"-" gorm:"column:password;type:varchar(255);not null"` // Never serialized to clients
	CreatedAt      time.Time `json:"-"`
}

// SignUpForm is the payload of the registration page.
type SignUpForm struct {
	Username        string `json:"username" form:"username" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginForm is the payload of the login page.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}
