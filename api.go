package handler

import (
	"log"
	"net/http"
	"sync"

	"stride/internal/api"
	"stride/internal/config"
	"stride/internal/database"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/services/storefront"

	"github.com/gin-gonic/gin"
)

var (
	router     *gin.Engine
	routerOnce sync.Once
	routerErr  error
)

// initRouter builds the API once per serverless instance. Events are not
// published from here since instances do not outlive the request.
func initRouter() {
	cfg, err := config.Load()
	if err != nil {
		routerErr = err
		return
	}

	logger := logger.New(cfg.LogLevel, cfg.Env)

	db, err := database.New(cfg.DatabaseURL, false)
	if err != nil {
		routerErr = err
		return
	}

	client := storefront.NewClient(cfg.StoreDomain, cfg.StorefrontToken, cfg.StorefrontAPIVersion, logger)
	router = api.New(cfg, logger, db, client, events.Noop{}).GetRouter()
}

// Handler is the serverless entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	routerOnce.Do(initRouter)
	if routerErr != nil {
		log.Printf("Failed to initialize API: %v", routerErr)
		http.Error(w, `{"error":"Service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	router.ServeHTTP(w, r)
}
