package handler

import (
	"net/http"

	"carematch/internal/app/dto"

	"github.com/gin-gonic/gin"
)

// GetRequests lists the requests visible to the caller
// @Summary List requests
// @Description Requesters see their own requests; supporters see open requests they have not released
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RequestListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/requests [get]
func (h *APIHandler) GetRequests(c *gin.Context) {
	caller, ok := getUserFromContext(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.Engine.ListFor(c.Request.Context(), caller)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RequestListResponse{
		Requests: requests,
		Total:    len(requests),
	})
}

// GetRequest returns one request with the counterpart data the caller may see
// @Summary Request detail
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/requests/{id} [get]
func (h *APIHandler) GetRequest(c *gin.Context) {
	caller, ok := getUserFromContext(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.Engine.GetDetail(c.Request.Context(), id, caller)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CreateRequest posts a new open request
// @Summary Create request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRequestRequest true "Schedule and location"
// @Success 201 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/requests [post]
func (h *APIHandler) CreateRequest(c *gin.Context) {
	caller, ok := getUserFromContext(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	req, err := h.Engine.CreateRequest(c.Request.Context(), caller, in)
	if err != nil {
		engineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromRequest(req))
}
