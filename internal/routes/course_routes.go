package routes

import (
	"github.com/gin-gonic/gin"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
	"ecoverse/internal/models"
)

func CourseRoutes(r *gin.Engine, h *controllers.Handler, tokens *middleware.Tokens) {
	courses := r.Group("/courses")
	{
		courses.GET("", middleware.OptionalAuth(tokens), h.ListCourses)
		courses.GET("/:id", middleware.OptionalAuth(tokens), h.GetCourse)
	}

	authed := courses.Group("", middleware.RequireAuth(tokens))
	{
		authed.POST("", middleware.RequireRole(models.RoleOrganization, models.RoleAdmin), h.CreateCourse)
		authed.PUT("/:id", h.UpdateCourse)
		authed.DELETE("/:id", h.DeleteCourse)
	}
}
