package routes

import (
	"github.com/gin-gonic/gin"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
)

func ReportRoutes(r *gin.Engine, h *controllers.Handler, tokens *middleware.Tokens) {
	reports := r.Group("/reports")
	reports.Use(middleware.RequireAuth(tokens))
	{
		reports.POST("", h.CreateReport)
		reports.GET("", h.ListReports)
		reports.GET("/:id", h.GetReport)
		reports.PUT("/:id", h.UpdateReport)
		reports.DELETE("/:id", h.DeleteReport)
	}
}
