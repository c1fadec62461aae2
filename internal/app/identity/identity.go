// Package identity turns a caller's credential into a subject and role. The
// lifecycle core consumes only the resulting Identity.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"carematch/internal/app/role"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Identity struct {
	Subject string
	Role    role.Role
}

// Resolver yields the identity behind an HTTP request. A missing or invalid
// credential is reported as ErrUnauthenticated; any other error means the
// credential could not be checked.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (Identity, error)
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return ""
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
