package main

import (
	"net/http"
	"os"

	"arzaq-api/config"
	"arzaq-api/handlers"
	"arzaq-api/logger"
	"arzaq-api/middleware"
	"arzaq-api/routes"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("cors_origins", cfg.AllowedOrigins).
		Str("database", cfg.DatabasePath).
		Msg("starting arzaq api")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"environment": cfg.Environment,
			"version":     version,
		})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to Arzaq API - Fighting Food Waste",
			"version": version,
			"health":  "/health",
		})
	})

	routes.Setup(r, handlers.New(db, cfg, log))

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("server listening")
	if err := r.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
