package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WPCM-2025/consultation-service/internal/ai"
	"github.com/WPCM-2025/consultation-service/internal/auth"
	"github.com/WPCM-2025/consultation-service/internal/cache"
	"github.com/WPCM-2025/consultation-service/internal/config"
	"github.com/WPCM-2025/consultation-service/internal/events"
	"github.com/WPCM-2025/consultation-service/internal/handlers"
	"github.com/WPCM-2025/consultation-service/internal/metrics"
	"github.com/WPCM-2025/consultation-service/internal/repositories/postgres"
	"github.com/WPCM-2025/consultation-service/internal/services"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"github.com/WPCM-2025/consultation-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err)
		cacheService = cache.NoopCache{}
	} else {
		cacheService = cache.NewRedisCache(redisClient, logger)
	}

	var publisher events.EventPublisher = events.NoopEventPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.KafkaTopic,
			Logger:       utils.ToSlogLogger(logger),
		})
		if err != nil {
			logger.Error("failed to create Kafka publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Warn("no Kafka brokers configured, events disabled")
	}

	auth.Init(cfg)

	repo := postgres.NewRepository(db)
	validator := utils.NewValidator()
	summarizer := ai.NewHTTPSummarizer(cfg.SummarizerURL, cfg.SummarizerAPIKey)

	serviceManager := services.NewServiceManager(repo, cacheService, publisher, summarizer, logger, validator)
	handlerManager := handlers.NewHandlerManager(serviceManager, repo.User(), logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(metrics.Middleware())
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
