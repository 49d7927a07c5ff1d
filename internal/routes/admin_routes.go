package routes

import (
	"github.com/gin-gonic/gin"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
)

func AdminRoutes(r *gin.Engine, h *controllers.Handler, tokens *middleware.Tokens) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(tokens), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/summary", h.Summary)
		admin.GET("/users", h.ListUsers)
	}
}
