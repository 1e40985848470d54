package auth

import (
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.UserRole
}

// AccessTokenClaims represents the typed JWT issued to clients. The client
// never interprets it; the server is the sole verifier of validity and expiry.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Email  string         `json:"email"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
