package middleware

import (
	"carematch/internal/app/identity"
	"carematch/internal/app/role"

	"github.com/gin-gonic/gin"
)

const (
	ctxSubject = "userSubject"
	ctxRole    = "userRole"
	ctxToken   = "userToken"
)

func setCurrentUser(c *gin.Context, id identity.Identity, token string) {
	c.Set(ctxSubject, id.Subject)
	c.Set(ctxRole, id.Role)
	if token != "" {
		c.Set(ctxToken, token)
	}
}

// CurrentUser returns the identity resolved for this request by WithAuthCheck.
func CurrentUser(c *gin.Context) (identity.Identity, bool) {
	subject := c.GetString(ctxSubject)
	r, ok := c.Get(ctxRole)
	if subject == "" || !ok {
		return identity.Identity{}, false
	}
	id := identity.Identity{Subject: subject}
	id.Role, ok = r.(role.Role)
	return id, ok
}

// CurrentToken returns the bearer token the request authenticated with, if any.
func CurrentToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}
