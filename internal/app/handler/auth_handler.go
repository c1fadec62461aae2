package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"carematch/internal/app/dto"
	"carematch/internal/app/middleware"
	"carematch/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TokenRevoker blocks a token until it would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// TokenLifetime reports how long a token stays valid.
type TokenLifetime interface {
	Remaining(raw string, now time.Time) time.Duration
}

type AuthHandler struct {
	Repository *repository.Repository
	Revoker    TokenRevoker
	Lifetime   TokenLifetime
	now        func() time.Time
}

// NewAuthHandler builds the auth endpoints. revoker and lifetime may be nil
// when tokens are not issued locally; logout then reports 503.
func NewAuthHandler(r *repository.Repository, revoker TokenRevoker, lifetime TokenLifetime) *AuthHandler {
	return &AuthHandler{
		Repository: r,
		Revoker:    revoker,
		Lifetime:   lifetime,
		now:        time.Now,
	}
}

// LogoutUser revokes the presented token
// @Summary Logout
// @Description Adds the bearer token to the revocation list until it expires
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) LogoutUser(ctx *gin.Context) {
	if h.Revoker == nil || h.Lifetime == nil {
		errorResponse(ctx, http.StatusServiceUnavailable, "token revocation is not configured")
		return
	}

	tokenString := middleware.CurrentToken(ctx)
	if tokenString == "" {
		errorResponse(ctx, http.StatusUnauthorized, "authorization header missing")
		return
	}

	ttl := h.Lifetime.Remaining(tokenString, h.now())
	if ttl <= 0 {
		successResponse(ctx, http.StatusOK, "logged out", nil)
		return
	}

	if err := h.Revoker.Revoke(ctx.Request.Context(), tokenString, ttl); err != nil {
		logrus.WithError(err).Error("failed to revoke token")
		errorResponse(ctx, http.StatusServiceUnavailable, "token revocation unavailable")
		return
	}

	successResponse(ctx, http.StatusOK, "logged out", nil)
}

// GetUserProfile returns the caller's own profile
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetUserProfile(ctx *gin.Context) {
	caller, ok := getUserFromContext(ctx)
	if !ok {
		errorResponse(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.Repository.WithContext(ctx.Request.Context()).GetUserByID(caller.Subject)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		errorResponse(ctx, http.StatusNotFound, "profile not found")
		return
	case err != nil:
		logrus.WithError(err).Error("failed to load profile")
		errorResponse(ctx, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
		return
	}

	ctx.JSON(http.StatusOK, dto.ProfileResponse{
		ID:         user.ID,
		Role:       caller.Role.String(),
		FamilyName: user.FamilyName,
		FirstName:  user.FirstName,
		CenterID:   user.CenterID,
	})
}
