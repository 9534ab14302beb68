package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"home-battery-roi/internal/api"
	"home-battery-roi/internal/data"
	"home-battery-roi/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	env := os.Getenv("API_ENV")

	logger, err := logging.New(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ttl := time.Hour
	if v := os.Getenv("RUN_CACHE_TTL"); v != "" {
		if ttl, err = time.ParseDuration(v); err != nil {
			logger.Fatal("invalid RUN_CACHE_TTL", zap.String("value", v), zap.Error(err))
		}
	}
	workers := 0
	if v := os.Getenv("RUN_WORKERS"); v != "" {
		if workers, err = strconv.Atoi(v); err != nil {
			logger.Fatal("invalid RUN_WORKERS", zap.String("value", v), zap.Error(err))
		}
	}

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cache := data.NewRunCache(ttl)
	defer cache.Close()

	router := api.NewRouter(api.Options{
		Cache:     cache,
		PresetDir: os.Getenv("PRESET_DIR"),
		Workers:   workers,
		Logger:    logger,
	})
	serveStatic(router, logger)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting API server", zap.String("addr", srv.Addr), zap.Duration("run_cache_ttl", ttl))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// serveStatic serves the web UI build from STATIC_DIR (default
// ./web/dist) when present, with index.html as the SPA fallback.
func serveStatic(router *gin.Engine, logger *zap.Logger) {
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	if _, err := os.Stat(staticDir); err != nil {
		logger.Info("static directory not found, skipping static file serving", zap.String("dir", staticDir))
		return
	}

	router.Static("/assets", filepath.Join(staticDir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(staticDir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		// Don't serve index.html for API routes
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
	logger.Info("serving static files", zap.String("dir", staticDir))
}
