package routes

import (
	"github.com/gin-gonic/gin"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
)

func SignupRoutes(r *gin.Engine, h *controllers.Handler, tokens *middleware.Tokens) {
	signups := r.Group("/signups")
	signups.Use(middleware.RequireAuth(tokens))
	{
		signups.POST("", h.CreateSignup)
		signups.GET("", h.ListSignups)
		signups.GET("/:id", h.GetSignup)
		signups.PUT("/:id", h.UpdateSignup)
		signups.DELETE("/:id", h.DeleteSignup)
	}
}
