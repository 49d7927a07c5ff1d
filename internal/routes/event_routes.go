package routes

import (
	"github.com/gin-gonic/gin"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
)

// EventRoutes: listings are open to anonymous visitors.
func EventRoutes(r *gin.Engine, h *controllers.Handler, tokens *middleware.Tokens) {
	events := r.Group("/events")
	{
		events.GET("", middleware.OptionalAuth(tokens), h.ListEvents)
		events.GET("/mine", middleware.RequireAuth(tokens), h.ListMyEvents)
		events.GET("/:id", middleware.OptionalAuth(tokens), h.GetEvent)
	}

	authed := events.Group("", middleware.RequireAuth(tokens))
	{
		authed.POST("", middleware.RequireRole(models.RoleOrganization, models.RoleAdmin), h.CreateEvent)
		authed.PUT("/:id", h.UpdateEvent)
		authed.DELETE("/:id", h.DeleteEvent)
	}
}
