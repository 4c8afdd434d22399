package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/voyago/service-booking/internal/application"
	"github.com/voyago/service-booking/internal/auth"
	"github.com/voyago/service-booking/internal/config"
	"github.com/voyago/service-booking/internal/database"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
	bookingEvents "github.com/voyago/service-booking/internal/events"
	"github.com/voyago/service-booking/internal/handler"
	"github.com/voyago/service-booking/internal/middleware"
	"github.com/voyago/service-booking/internal/notification"
	"github.com/voyago/service-booking/internal/repository"
	"github.com/voyago/service-booking/pkg/logger"
	"github.com/voyago/service-booking/pkg/metrics"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.CouponModel{},
			&repository.ItemModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Connect to Redis for the idempotency guard
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer func() { _ = rdb.Close() }()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL)

	// Initialize Kafka producer
	kafkaProducer := bookingEvents.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize metrics
	m := metrics.New("voyago_booking")

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)
	itemRepo := repository.NewGormItemRepository(db)

	// Initialize domain and application services
	calculator := bookingDomain.NewStandardQuoteCalculator()
	dispatcher := notification.NewKafkaDispatcher(kafkaProducer, serviceName, log)
	couponService := application.NewCouponService(couponRepo, m, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		itemRepo,
		couponService,
		calculator,
		dispatcher,
		kafkaProducer,
		m,
		log,
	)
	catalogService := application.NewCatalogService(itemRepo, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + serviceName
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(m.Middleware())

	// Register health check and metrics routes
	healthHandler := handler.NewHealthHandler(db)
	healthHandler.RegisterRoutes(&router.RouterGroup)
	router.GET("/metrics", metrics.Handler())

	// Register routes
	idempotency := middleware.IdempotencyGuard(rdb, 24*time.Hour, log)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager, idempotency)
	handler.NewCouponHandler(couponService).RegisterRoutes(&router.RouterGroup)
	handler.NewCatalogHandler(catalogService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminHandler(bookingService, couponService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
