package routes

import (
	"github.com/gin-gonic/gin"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
)

func AuthRoutes(r *gin.Engine, h *controllers.Handler, tokens *middleware.Tokens) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", middleware.RequireAuth(tokens), h.Me)
	}
}
