package identity

import (
	"context"
	"fmt"
	"net/http"

	"carematch/internal/app/role"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCResolver accepts ID tokens from an OpenID Connect issuer. The role is
// read from roleClaim, either a string or a list whose first known entry wins.
type OIDCResolver struct {
	verifier  *oidc.IDTokenVerifier
	roleClaim string
}

func NewOIDCResolver(ctx context.Context, issuer, clientID, roleClaim string) (*OIDCResolver, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}
	return NewOIDCResolverWithVerifier(provider.Verifier(&oidc.Config{ClientID: clientID}), roleClaim), nil
}

func NewOIDCResolverWithVerifier(verifier *oidc.IDTokenVerifier, roleClaim string) *OIDCResolver {
	if roleClaim == "" {
		roleClaim = "role"
	}
	return &OIDCResolver{verifier: verifier, roleClaim: roleClaim}
}

func (o *OIDCResolver) Resolve(ctx context.Context, r *http.Request) (Identity, error) {
	raw := BearerToken(r)
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}

	idToken, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	rl, ok := extractRole(claims[o.roleClaim])
	if !ok || idToken.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token lacks subject or %s claim", ErrUnauthenticated, o.roleClaim)
	}
	return Identity{Subject: idToken.Subject, Role: rl}, nil
}

func extractRole(v any) (role.Role, bool) {
	switch val := v.(type) {
	case string:
		r, err := role.Parse(val)
		return r, err == nil
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				if r, err := role.Parse(s); err == nil {
					return r, true
				}
			}
		}
	}
	return 0, false
}
