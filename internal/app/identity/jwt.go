package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"carematch/internal/app/ds"

	"github.com/golang-jwt/jwt"
)

// Revocations reports tokens that were logged out before they expired.
type Revocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// JWTResolver accepts HMAC-signed tokens carrying ds.JWTClaims.
type JWTResolver struct {
	secret  []byte
	method  jwt.SigningMethod
	revoked Revocations
}

func NewJWTResolver(secret string, method jwt.SigningMethod, revoked Revocations) *JWTResolver {
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	return &JWTResolver{
		secret:  []byte(secret),
		method:  method,
		revoked: revoked,
	}
}

func (j *JWTResolver) Resolve(ctx context.Context, r *http.Request) (Identity, error) {
	raw := BearerToken(r)
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}

	claims, err := j.Parse(raw)
	if err != nil {
		return Identity{}, err
	}

	if j.revoked != nil {
		revoked, err := j.revoked.IsRevoked(ctx, raw)
		if err != nil {
			return Identity{}, fmt.Errorf("revocation check: %w", err)
		}
		if revoked {
			return Identity{}, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
	}

	return Identity{Subject: claims.Subject, Role: claims.Role}, nil
}

// Parse validates raw and returns its claims.
func (j *JWTResolver) Parse(raw string) (*ds.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &ds.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != j.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*ds.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: token lacks subject or role", ErrUnauthenticated)
	}
	return claims, nil
}

// Remaining returns how long raw stays valid; zero for expired or unparsable
// tokens and for tokens without an expiry.
func (j *JWTResolver) Remaining(raw string, now time.Time) time.Duration {
	claims, err := j.Parse(raw)
	if err != nil || claims.ExpiresAt == 0 {
		return 0
	}
	ttl := time.Unix(claims.ExpiresAt, 0).Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
