package middleware

import (
	"errors"
	"net/http"

	"carematch/internal/app/dto"
	"carematch/internal/app/identity"
	"carematch/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthMiddleware struct {
	Resolver identity.Resolver
}

func NewAuthMiddleware(resolver identity.Resolver) *AuthMiddleware {
	return &AuthMiddleware{Resolver: resolver}
}

// WithAuthCheck resolves the caller and, when roles are given, requires one of them.
func (am *AuthMiddleware) WithAuthCheck(assignedRoles ...role.Role) gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		id, err := am.Resolver.Resolve(gCtx.Request.Context(), gCtx.Request)
		if err != nil {
			entry := logrus.WithError(err).WithField("path", gCtx.FullPath())
			if errors.Is(err, identity.ErrUnauthenticated) {
				entry.Debug("unauthenticated request")
				abort(gCtx, http.StatusUnauthorized, "unauthorized")
				return
			}
			entry.Error("identity check failed")
			abort(gCtx, http.StatusServiceUnavailable, "identity check unavailable")
			return
		}

		if len(assignedRoles) > 0 && !hasRequiredRole(id.Role, assignedRoles) {
			abort(gCtx, http.StatusForbidden, "forbidden for role "+id.Role.String())
			return
		}

		setCurrentUser(gCtx, id, identity.BearerToken(gCtx.Request))
		gCtx.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func hasRequiredRole(userRole role.Role, requiredRoles []role.Role) bool {
	for _, requiredRole := range requiredRoles {
		if userRole == requiredRole {
			return true
		}
	}
	return false
}
