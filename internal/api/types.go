package api

import "time"

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest is the payload for POST /auth/register. The confirmation
// must match before the request leaves the client.
type RegisterRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// AuthResponse is the success shape of every session-creating endpoint.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
}

// OAuthURLResponse carries the provider authorization URL to redirect to.
type OAuthURLResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// MessageResponse is the success shape of POST /auth/logout.
type MessageResponse struct {
	Message string `json:"message"`
}

// User is the authenticated user's profile from GET /user.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
