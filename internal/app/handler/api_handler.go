package handler

import (
	"errors"
	"net/http"
	"strconv"

	"carematch/internal/app/dto"
	"carematch/internal/app/lifecycle"
	"carematch/internal/app/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIHandler serves the REST API on top of the lifecycle engine.
type APIHandler struct {
	Engine      *lifecycle.Engine
	AuthHandler *AuthHandler
}

func NewAPIHandler(engine *lifecycle.Engine, authHandler *AuthHandler) *APIHandler {
	return &APIHandler{
		Engine:      engine,
		AuthHandler: authHandler,
	}
}

func getUserFromContext(c *gin.Context) (lifecycle.Caller, bool) {
	id, ok := middleware.CurrentUser(c)
	if !ok {
		logrus.Warn("caller not found in context")
		return lifecycle.Caller{}, false
	}
	return lifecycle.Caller{Subject: id.Subject, Role: id.Role}, true
}

// ============ Helpers ============

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// statusFor maps a lifecycle error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, lifecycle.ErrInvalidTransition), errors.Is(err, lifecycle.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrConflict), errors.Is(err, lifecycle.ErrInconsistentState):
		return http.StatusConflict
	case errors.Is(err, lifecycle.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func engineError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		message = http.StatusText(status)
	}
	errorResponse(c, status, message)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		errorResponse(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
