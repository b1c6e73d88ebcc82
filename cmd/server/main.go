package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blood-request-routing/internal/cache"
	"blood-request-routing/internal/config"
	"blood-request-routing/internal/database"
	"blood-request-routing/internal/handler"
	"blood-request-routing/internal/logger"
	"blood-request-routing/internal/middleware"
	"blood-request-routing/internal/repository"
	"blood-request-routing/internal/scoring"
	"blood-request-routing/internal/service"
	"blood-request-routing/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	// 2. Initialize logger
	zl, err := logger.New(cfg.Log.Level, cfg.Server.GinMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zl.Info("configuration loaded", zap.String("db_driver", cfg.Database.Driver))

	// 3. Initialize JWT utilities with config
	utils.InitJWT(cfg.JWT.AccessSecret, cfg.JWT.AccessTokenExpiry)

	// 4. Initialize database connection
	db, err := database.Connect(cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	// 5. Availability cache (optional)
	var availabilityCache service.AvailabilityCache
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			zl.Warn("redis unavailable, availability cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer client.Close()
			availabilityCache = cache.NewRedisAvailabilityCache(client, cfg.Redis.AvailabilityTTL)
			zl.Info("availability cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.AvailabilityTTL))
		}
	}

	// 6. Initialize repositories
	auditRepo := repository.NewAuditRepo(db)
	requestRepo := repository.NewBloodRequestRepo(db)
	stockRepo := repository.NewBloodStockRepo(db)
	orgRepo := repository.NewOrganizationRepo(db)

	// 7. Initialize calculators
	priorityCalculator := scoring.NewPriorityCalculator(cfg.Scoring.StockReferenceUnits, nil)
	urgencyCalculator := scoring.NewUrgencyCalculator()

	// 8. Initialize services
	priorityService := service.NewPriorityService(stockRepo, availabilityCache, priorityCalculator, zl)
	requestService := service.NewBloodRequestService(requestRepo, stockRepo, orgRepo, priorityService, urgencyCalculator, auditRepo, zl)
	stockService := service.NewBloodStockService(stockRepo, orgRepo, priorityService, auditRepo, zl)
	routingService := service.NewRoutingService(stockRepo, orgRepo)

	// 9. Initialize handlers
	requestHandler := handler.NewBloodRequestHandler(requestService, zl)
	stockHandler := handler.NewBloodStockHandler(stockService, routingService, zl)

	// 10. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zl))
	r.Use(middleware.CORS(cfg.CORS))

	// 11. Define routes
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "blood-request-routing",
		})
	})

	handler.RegisterRoutes(r.Group("/api/v1"), requestHandler, stockHandler)

	// 12. Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// 13. Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zl.Info("server exited")
}
