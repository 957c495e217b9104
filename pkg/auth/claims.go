package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OperatorID   uuid.UUID
	OperatorName string
	Role         enums.OperatorRole
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to operators.
type AccessTokenClaims struct {
	OperatorID   uuid.UUID          `json:"operator_id"`
	OperatorName string             `json:"operator_name,omitempty"`
	Role         enums.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
