package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forzencookie/sie-server/internal/api"
	"github.com/forzencookie/sie-server/internal/config"
	"github.com/forzencookie/sie-server/internal/logger"
	"github.com/forzencookie/sie-server/internal/repository"
	"github.com/forzencookie/sie-server/internal/service"
)

func main() {
	log := logger.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up database")
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret, log)

	// Create API handler
	handler := api.NewHandler(svc, log)

	// Set up Gin router
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", serverAddr).Msg("Starting server")
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
