package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"carematch/internal/app/identity"
	"carematch/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	id  identity.Identity
	err error
}

func (s stubResolver) Resolve(context.Context, *http.Request) (identity.Identity, error) {
	return s.id, s.err
}

func serve(resolver identity.Resolver, header http.Header, roles ...role.Role) (*httptest.ResponseRecorder, identity.Identity, string) {
	var (
		seen  identity.Identity
		token string
	)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/x", NewAuthMiddleware(resolver).WithAuthCheck(roles...), func(c *gin.Context) {
		seen, _ = CurrentUser(c)
		token = CurrentToken(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, seen, token
}

func TestWithAuthCheck(t *testing.T) {
	supporter := identity.Identity{Subject: "s1", Role: role.Supporter}

	tests := []struct {
		name     string
		resolver identity.Resolver
		roles    []role.Role
		want     int
	}{
		{"no credential", stubResolver{err: identity.ErrUnauthenticated}, nil, http.StatusUnauthorized},
		{"store down", stubResolver{err: errors.New("redis: connection refused")}, nil, http.StatusServiceUnavailable},
		{"wrong role", stubResolver{id: supporter}, []role.Role{role.Requester}, http.StatusForbidden},
		{"any role", stubResolver{id: supporter}, nil, http.StatusNoContent},
		{"matching role", stubResolver{id: supporter}, []role.Role{role.Requester, role.Supporter}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, _ := serve(tt.resolver, nil, tt.roles...)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWithAuthCheckStoresCaller(t *testing.T) {
	header := http.Header{}
	header.Set("Authorization", "Bearer tok")
	header.Set(HeaderRequestID, "req-42")

	rec, seen, token := serve(stubResolver{id: identity.Identity{Subject: "u1", Role: role.Requester}}, header)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, identity.Identity{Subject: "u1", Role: role.Requester}, seen)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
}

func TestCurrentUserMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)
}
