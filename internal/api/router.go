// Package api exposes simulation runs over HTTP.
package api

import (
	"agentsim/internal/api/handlers"
	"agentsim/internal/api/middleware"
	"agentsim/internal/runner"

	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware and routes. /metrics is served when opts.Metrics is set.
func NewRouter(opts runner.Options, allowedOrigins ...string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.CORS(allowedOrigins...))
	router.Use(middleware.Logger(opts.Logger))
	router.Use(middleware.ErrorHandler(opts.Logger))

	runHandler := handlers.NewRunHandler(opts)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/netlists", handlers.ListNetlists)

		api.POST("/runs", runHandler.RunSimulation)
		api.POST("/runs/compare", runHandler.CompareRuns)
		api.GET("/runs", runHandler.ListRuns)
		api.GET("/runs/:id", runHandler.GetRun)
		api.GET("/runs/:id/rows", runHandler.GetRows)
	}

	return router
}
