package handler

import (
	"carematch/internal/app/middleware"
	"carematch/internal/app/role"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes wires every REST route with its role guard.
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group("/api")

	requests := api.Group("/requests")
	{
		requests.GET("", authMiddleware.WithAuthCheck(role.Requester, role.Supporter), h.GetRequests)
		requests.GET("/:id", authMiddleware.WithAuthCheck(role.Requester, role.Supporter), h.GetRequest)
		requests.POST("", authMiddleware.WithAuthCheck(role.Requester), h.CreateRequest)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", authMiddleware.WithAuthCheck(role.Supporter), h.GetOrders)
		orders.POST("/:requestId", authMiddleware.WithAuthCheck(role.Supporter), h.ClaimRequest)
		// role-specific checks happen in the engine
		orders.PATCH("/:requestId", authMiddleware.WithAuthCheck(role.Requester, role.Supporter), h.UpdateStatus)
	}

	auth := api.Group("/auth")
	auth.Use(authMiddleware.WithAuthCheck(role.Requester, role.Supporter))
	{
		auth.GET("/profile", h.AuthHandler.GetUserProfile)
		auth.POST("/logout", h.AuthHandler.LogoutUser)
	}

	router.GET("/ping", h.Ping)
}

// Ping reports that the API is up
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"message": "pong"})
}
