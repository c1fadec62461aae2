package handler

import (
	"net/http"

	"carematch/internal/app/dto"

	"github.com/gin-gonic/gin"
)

// GetOrders lists the calling supporter's engagements
// @Summary Supporter engagements
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.EngagementListResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/orders [get]
func (h *APIHandler) GetOrders(c *gin.Context) {
	caller, ok := getUserFromContext(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	engagements, err := h.Engine.ListEngagements(c.Request.Context(), caller)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.EngagementListResponse{
		Engagements: engagements,
		Total:       len(engagements),
	})
}

// ClaimRequest matches an open request to the calling supporter
// @Summary Claim request
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param requestId path int true "Request ID"
// @Success 201 {object} dto.TransitionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{requestId} [post]
func (h *APIHandler) ClaimRequest(c *gin.Context) {
	caller, ok := getUserFromContext(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(c, "requestId")
	if !ok {
		return
	}

	res, err := h.Engine.Claim(c.Request.Context(), id, caller)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TransitionResponse{
		Request: dto.FromRequest(res.Request),
		Order:   dto.FromOrder(res.Order),
	})
}

// UpdateStatus applies a lifecycle transition to a request and its order
// @Summary Update request status
// @Description update_status is one of confirmed, completed, canceled, decline, refusal
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param requestId path int true "Request ID"
// @Param request body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/orders/{requestId} [patch]
func (h *APIHandler) UpdateStatus(c *gin.Context) {
	caller, ok := getUserFromContext(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(c, "requestId")
	if !ok {
		return
	}

	var in dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	res, err := h.Engine.ApplyTransition(c.Request.Context(), id, in.UpdateStatus, caller)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TransitionResponse{
		Request:      dto.FromRequest(res.Request),
		Order:        dto.FromOrder(res.Order),
		OrderMissing: res.OrderMissing,
	})
}
