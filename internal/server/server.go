package server

import (
	"fmt"
	"net/http"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/events"
	"product-catalog/internal/metrics"
	custommiddleware "product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	dbService *database.Service
	publisher events.Publisher
	startedAt time.Time
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	ErrorCount int64             `json:"errorCount"`
	Database   map[string]string `json:"database"`
	Timestamp  string            `json:"timestamp"`
}

func NewServer(cfg *config.Config, logger *zap.Logger, dbService *database.Service, publisher events.Publisher) *Server {
	router := chi.NewRouter()
	sink := metrics.NewSink()
	redacted := cfg.Server.IsProduction()
	startedAt := time.Now()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware([]string{cfg.CORS.FrontendURL}, !redacted))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger, sink, redacted))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		transport.RespondWithJSON(w, http.StatusOK, HealthResponse{
			Status:     "ok",
			Uptime:     time.Since(startedAt).Round(time.Second).String(),
			ErrorCount: sink.ErrorCount(),
			Database:   dbService.Health(),
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		})
	})

	db := dbService.DB()

	// Repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Services
	authService := service.NewAuthService(cfg.Admin, cfg.JWT)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo, productRepo)
	orderService := service.NewOrderService(productRepo, orderRepo, publisher, logger)

	// Handlers
	adminOnly := custommiddleware.RequireAdmin(authService, logger)
	transport.NewAuthHandler(authService, logger).RegisterRoutes(router)
	transport.NewProductHandler(productService, logger, redacted).RegisterRoutes(router, adminOnly)
	transport.NewCategoryHandler(categoryService, logger, redacted).RegisterRoutes(router, adminOnly)

	orderHandler := transport.NewOrderHandler(orderService, logger, redacted)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 30,
			Window:            time.Minute,
			KeyPrefix:         "rl:orders",
		}, logger)
		orderHandler.RegisterRoutes(router, rateLimit)
	} else {
		orderHandler.RegisterRoutes(router)
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    logger,
		dbService: dbService,
		publisher: publisher,
		startedAt: startedAt,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if p, ok := s.publisher.(*events.KafkaPublisher); ok {
		p.Close()
	}

	if s.dbService != nil {
		if err := s.dbService.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
