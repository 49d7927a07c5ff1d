package routes

import (
	"github.com/gin-gonic/gin"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
)

func UserRoutes(r *gin.Engine, h *controllers.Handler, tokens *middleware.Tokens) {
	users := r.Group("/users")
	users.Use(middleware.RequireAuth(tokens))
	{
		users.GET("", middleware.RequireRole(models.RoleAdmin), h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.PATCH("/:id/status", h.SetUserStatus)
		users.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), h.DeleteUser)
	}
}
