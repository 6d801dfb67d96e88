package main

import (
	"fmt"
	"os"
	"strings"

	"agentsim/internal/api"
	"agentsim/internal/logger"
	"agentsim/internal/metrics"
	"agentsim/internal/runner"
	"agentsim/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	dbPath := os.Getenv("AGENTSIM_DB")
	if dbPath == "" {
		dbPath = "data/runs.db"
	}

	lg, err := logger.New(logger.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("API_ENV") != "production",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer lg.Close()
	log := lg.Logger

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := os.MkdirAll(dirOf(dbPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create database directory")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("failed to open database")
	}
	defer st.Close()
	log.Info().Str("path", dbPath).Msg("database opened")

	var origins []string
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}

	router := api.NewRouter(runner.Options{
		Logger:  log,
		Store:   st,
		Metrics: metrics.New(),
	}, origins...)

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("addr", addr).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func dirOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i > 0 {
		return path[:i]
	}
	return "."
}
