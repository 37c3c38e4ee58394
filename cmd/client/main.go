package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"rently/client/config"
	"rently/client/internal/api"
	"rently/client/internal/backend"
	"rently/client/internal/forecast"
	"rently/client/internal/models"
	"rently/client/internal/search"
	"rently/client/internal/session"
	"rently/client/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Open the durable credential store
	store, err := storage.NewStore(cfg.Session.StorePath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open credential store")
	}
	defer store.Close()

	// Initialize the backend client and the session store; the session
	// provides the bearer token for every backend request.
	client := backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.RequestTimeout)*time.Second, logger)
	sessions := session.NewStore(client, store, logger)
	client.SetTokenSource(sessions.Token)

	if sessions.Current().IsAuthenticated {
		logger.WithField("user_id", sessions.Current().UserID()).Info("Resumed persisted session")
	}

	// Start the search pipeline and trigger the initial unfiltered load
	pipeline := search.NewPipeline(client, time.Duration(cfg.Search.DebounceMillis)*time.Millisecond, logger)
	defer pipeline.Close()
	pipeline.SetState(models.SearchFilterState{
		TypeFilter: models.TypeFilterAll,
		SortKey:    models.SortNewest,
	})

	forecasts := forecast.NewService(client, logger)

	handler := api.NewHandler(sessions, pipeline, forecasts, client, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting client gateway on port %s", cfg.Listen.Port)
	if err := router.Run(":" + cfg.Listen.Port); err != nil {
		logger.WithError(err).Fatal("Gateway failed to start")
	}
}
