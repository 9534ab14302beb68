package api

import (
	"net/http"

	"home-battery-roi/internal/api/handlers"
	"home-battery-roi/internal/api/middleware"
	"home-battery-roi/internal/data"
	"home-battery-roi/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the router.
type Options struct {
	Cache     *data.RunCache
	PresetDir string
	Workers   int
	Logger    *zap.Logger
}

// NewRouter wires middleware and the /api/v1 routes.
func NewRouter(opts Options) *gin.Engine {
	logger := logging.OrNop(opts.Logger)

	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler(logger))

	presetHandler := handlers.NewPresetHandler(opts.PresetDir, logger)
	runHandler := handlers.NewRunHandler(opts.Cache, presetHandler, logger, opts.Workers)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cached_runs": opts.Cache.Len()})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/runs", runHandler.RunScenarios)
		v1.POST("/runs/csv", runHandler.RunScenariosCSV)
		v1.GET("/runs/:id/trajectory", runHandler.GetTrajectory)
		v1.GET("/runs/:id/ledger", runHandler.GetLedger)

		v1.GET("/presets", presetHandler.ListPresets)
		v1.GET("/parameters", handlers.ListParameters)
		v1.GET("/defaults", handlers.GetDefaults)
	}
	return router
}
