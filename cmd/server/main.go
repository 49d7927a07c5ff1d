package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ecoverse/internal/config"
	"ecoverse/internal/controllers"
	"ecoverse/internal/logger"
	"ecoverse/internal/middleware"
	"ecoverse/internal/routes"
	"ecoverse/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Structured logging to stdout and a rotating file
	appLog := logger.Setup(cfg.LogFile, cfg.LogLevel)
	if cfg.JWTSecret == "supersecret" {
		appLog.Warn("JWT_SECRET is not set; using the development default")
	}
	if !appLog.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDB(cfg, logger.GormLogger(appLog))
	if err != nil {
		appLog.Fatalf("database: %v", err)
	}
	st := store.New(db)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := controllers.SeedAdmin(context.Background(), st.Users, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			appLog.Fatalf("seed admin: %v", err)
		}
		if created {
			appLog.WithField("email", cfg.AdminEmail).Info("admin account created")
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		appLog.Fatalf("upload dir: %v", err)
	}

	tokens := middleware.NewTokens(cfg.JWTSecret, cfg.JWTExpiresIn).WithAccounts(st.Users)
	h := controllers.NewHandler(st, tokens, controllers.UploadConfig{
		Dir:        cfg.UploadDir,
		MaxBytes:   cfg.UploadMaxBytes,
		PublicPath: "/uploads",
	}, appLog)

	r := routes.SetupRouter(routes.Options{
		Handler:   h,
		Tokens:    tokens,
		Metrics:   middleware.NewMetrics(),
		UploadDir: cfg.UploadDir,
		AccessLog: true,
	})

	appLog.Infof("🚀 Server running at :%s", cfg.Port)
	appLog.Fatal(http.ListenAndServe("0.0.0.0:"+cfg.Port, r))
}
