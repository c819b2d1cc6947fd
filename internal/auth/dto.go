package auth

import "github.com/google/uuid"

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Username string
	Password string
}

// SessionDTO is returned on successful login or registration.
type SessionDTO struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	AccessToken string    `json:"access_token"`
}
