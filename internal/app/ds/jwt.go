package ds

import (
	"carematch/internal/app/role"

	"github.com/golang-jwt/jwt"
)

// JWTClaims carries the caller identity; the subject lives in StandardClaims.Subject.
type JWTClaims struct {
	jwt.StandardClaims
	Role role.Role `json:"role"`
}
