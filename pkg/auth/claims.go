package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	// JTI seeds the registered claim ID; a fresh UUID is used when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients. Roles are
// intentionally absent: they are resolved from the database per request so
// group membership changes take effect immediately.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}
