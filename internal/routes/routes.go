package routes

import (
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ecoverse/internal/controllers"
	"ecoverse/internal/middleware"
)

type Options struct {
	Handler *controllers.Handler
	Tokens  *middleware.Tokens
	Metrics *middleware.Metrics

	// UploadDir is served read-only under /uploads when set.
	UploadDir string

	// AccessLog enables per-request logging to the handler's log output.
	AccessLog bool
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.AccessLog {
		out := logrus.StandardLogger().Out
		if opts.Handler.Log != nil {
			out = opts.Handler.Log.Out
		}
		r.Use(ginlog.SetLogger(
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/healthz", "/metrics"}),
			ginlog.WithWriter(out),
		))
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.Use(middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	AuthRoutes(r, opts.Handler, opts.Tokens)
	UserRoutes(r, opts.Handler, opts.Tokens)
	EventRoutes(r, opts.Handler, opts.Tokens)
	CourseRoutes(r, opts.Handler, opts.Tokens)
	SignupRoutes(r, opts.Handler, opts.Tokens)
	ReportRoutes(r, opts.Handler, opts.Tokens)
	UploadRoutes(r, opts.Handler, opts.Tokens)
	AdminRoutes(r, opts.Handler, opts.Tokens)

	return r
}
