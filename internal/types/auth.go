package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest is the body of PUT /api/auth/password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

// UpdateAccountRequest is the body of PATCH /api/auth/me.
type UpdateAccountRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// DeleteAccountRequest is the body of DELETE /api/auth/me. The password is
// asked for again because deletion takes every resume with it.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// User is the public view of an account; the password hash never leaves the db package.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse is returned by register and login.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
