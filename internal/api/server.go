package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stride/internal/api/handlers"
	"stride/internal/api/middleware"
	"stride/internal/config"
	"stride/internal/database"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/metrics"
	"stride/internal/services/storefront"
	"stride/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionPurgeInterval = time.Hour

type Server struct {
	config      *config.Config
	logger      *logger.Logger
	db          *database.Database
	sessions    *session.Manager
	router      *gin.Engine
	server      *http.Server
	stopPurging context.CancelFunc
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, client *storefront.Client, publisher events.Publisher) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	sessions := session.NewManager(db.DB, cfg.SessionSecret, cfg.SessionMaxAge, cfg.Env == "production", logger)

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.Metrics())

	// Initialize handlers
	homeParams := storefront.HomepageParams{
		GridHandle:     cfg.HomeGridHandle,
		ShowcaseHandle: cfg.HomeShowcaseHandle,
		FeaturedHandle: cfg.HomeFeaturedHandle,
	}
	cartHandler := handlers.NewCartHandler(client, sessions, logger)
	layoutHandler := handlers.NewLayoutHandler(client, cartHandler, homeParams, logger)
	collectionHandler := handlers.NewCollectionHandler(client, db, publisher, logger, cfg.CollectionPageCount)
	productHandler := handlers.NewProductHandler(client, sessions, logger)
	searchHandler := handlers.NewSearchHandler(client, db, publisher, logger)
	accountHandler := handlers.NewAccountHandler(client, sessions, logger)
	healthHandler := handlers.NewHealthHandler(db, logger)

	authLimiter := middleware.NewRateLimiter(float64(cfg.AuthRateLimit), cfg.AuthRateBurst)

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Routes
	v1 := router.Group("/api/v1", sessions.Middleware())
	{
		v1.GET("/layout", layoutHandler.Layout)
		v1.GET("/home", layoutHandler.Home)
		v1.GET("/navigation", layoutHandler.Navigation)

		// Collections
		collections := v1.Group("/collections")
		{
			collections.GET("/:handle", collectionHandler.Show)
			collections.GET("/:handle/popular-filters", collectionHandler.PopularFilters)
		}

		// Products
		v1.GET("/products/:handle", productHandler.Get)

		// Search
		v1.GET("/search", searchHandler.Search)
		v1.GET("/search/popular", searchHandler.Popular)

		// Cart
		cart := v1.Group("/cart")
		{
			cart.GET("", cartHandler.Get)
			cart.POST("/lines", cartHandler.AddLine)
			cart.PATCH("/lines", cartHandler.UpdateLine)
			cart.DELETE("/lines/:lineId", cartHandler.RemoveLine)
		}

		// Account
		account := v1.Group("/account")
		{
			account.GET("", accountHandler.Get)
			account.PATCH("", accountHandler.Update)
			account.POST("/logout", accountHandler.Logout)

			auth := account.Group("", authLimiter.Middleware())
			auth.POST("/login", accountHandler.Login)
			auth.POST("/register", accountHandler.Register)
			auth.POST("/recover", accountHandler.Recover)
		}
	}

	return &Server{
		config:   cfg,
		logger:   logger,
		db:       db,
		sessions: sessions,
		router:   router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopPurging = cancel
	go s.sessions.RunPurge(ctx, sessionPurgeInterval)

	s.logger.Info("Starting server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.stopPurging != nil {
		s.stopPurging()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the Gin router for serverless deployments
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
