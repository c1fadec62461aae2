package identity

import (
	"context"
	"fmt"
	"net/http"

	"carematch/internal/app/role"
)

const (
	HeaderDebugSubject = "X-Debug-Subject"
	HeaderDebugRole    = "X-Debug-Role"
)

// DevResolver hands every caller a fixed identity. With overrides enabled the
// X-Debug-Subject and X-Debug-Role headers replace it per request. Only wired
// outside production.
type DevResolver struct {
	identity      Identity
	allowOverride bool
}

func NewDevResolver(subject string, r role.Role, allowOverride bool) *DevResolver {
	return &DevResolver{
		identity:      Identity{Subject: subject, Role: r},
		allowOverride: allowOverride,
	}
}

func (d *DevResolver) Resolve(_ context.Context, r *http.Request) (Identity, error) {
	id := d.identity
	if d.allowOverride {
		if s := r.Header.Get(HeaderDebugSubject); s != "" {
			id.Subject = s
		}
		if h := r.Header.Get(HeaderDebugRole); h != "" {
			parsed, err := role.Parse(h)
			if err != nil {
				return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
			}
			id.Role = parsed
		}
	}
	if id.Subject == "" || !id.Role.Valid() {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}
