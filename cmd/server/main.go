package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-reconciliation-backend/internal/config"
	"bank-reconciliation-backend/internal/logging"
	"bank-reconciliation-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	envErr := godotenv.Load()

	cfg := config.LoadOrEnv()
	logger := logging.NewLogger(cfg.Logging)
	if envErr != nil {
		logger.Debug("no .env file found, relying on system env")
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		logger.Error("database init failed", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	if db == nil {
		logger.Warn("no database driver configured, runs are kept in memory only")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logging.RequestLogger(logging.NewLoggerWithSystem(cfg.Logging, "http")), gin.Recovery())
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := routes.RegisterRoutes(r, db, cfg, logger); err != nil {
		logger.Error("route setup failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "persistent", db != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdown(srv, cfg.Server.ShutdownGrace, logger)
}

func shutdown(srv *http.Server, grace time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	logger.Info("shutting down", "grace", grace)
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
