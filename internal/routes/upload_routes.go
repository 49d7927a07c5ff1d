package routes

import (
	"github.com/gin-gonic/gin"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
)

func UploadRoutes(r *gin.Engine, h *controllers.Handler, tokens *middleware.Tokens) {
	r.POST("/uploads", middleware.RequireAuth(tokens), h.UploadImage)
}
