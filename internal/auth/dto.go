package auth

import (
	"github.com/voltline/voltline-backend/internal/users"
)

// LoginRequest carries sign-in credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful sign-in.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
	Hints        UIHints        `json:"ui_hints"`
}

// RegisterRequest carries the sign-up payload.
type RegisterRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    string  `json:"full_name"`
	CompanyName *string `json:"company_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// RegisterResponse is returned after a successful sign-up.
type RegisterResponse struct {
	User *users.UserDTO `json:"user"`
}

// RefreshRequest rotates a refresh token. The access token may be expired;
// only its signature and identity claims are inspected.
type RefreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the freshly rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionResponse describes the signed-in user for the session endpoint.
type SessionResponse struct {
	User  *users.UserDTO `json:"user"`
	Hints UIHints        `json:"ui_hints"`
}
