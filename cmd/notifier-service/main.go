package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tickrflow/internal/notifier/config"
	"tickrflow/internal/notifier/delivery/consumer"
	delivery "tickrflow/internal/notifier/delivery/http"
	"tickrflow/internal/notifier/repository"
	"tickrflow/internal/notifier/service"
	"tickrflow/pkg/common"
	"tickrflow/pkg/logger"
	"tickrflow/pkg/mailer"
	"tickrflow/pkg/postgres"
	"tickrflow/pkg/redis"
	"tickrflow/pkg/telegram"
	"tickrflow/pkg/workflow"

	"google.golang.org/genai"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the notifier service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Notifier Service", zap.String("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Create the consumer groups if they don't exist.
	// MKSTREAM creates the stream if it doesn't exist.
	for _, stream := range []string{common.RedisStreamUserCreated, common.RedisStreamSendDailyNews} {
		if err := redisClient.XGroupCreateMkStream(context.Background(), stream, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err), logger.StringField("stream", stream))
			}
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	runRepo := repository.NewWorkflowRunRepository(db.DB)
	newsRepo, err := repository.NewFinnhubRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Finnhub repository", zap.Error(err))
	}

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
	}
	aiRepo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
	}

	// Initialize mail transport
	mailClient, err := mailer.NewMailer(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
		UseTLS:   cfg.SMTP.UseTLS,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// Initialize ops notifier
	var opsNotifier telegram.Notifier = telegram.NopNotifier{}
	if cfg.Telegram.Enabled {
		opsNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	}

	// Initialize workflow engine with Redis-backed step checkpoints
	checkpointTTL := cfg.Notifier.CheckpointTTL
	if checkpointTTL <= 0 {
		checkpointTTL = 24 * time.Hour
	}
	retryPolicy := workflow.DefaultRetryPolicy()
	if cfg.Notifier.StepMaxRetries > 0 {
		retryPolicy.MaxRetries = cfg.Notifier.StepMaxRetries
	}
	if cfg.Notifier.StepRetryInterval > 0 {
		retryPolicy.InitialInterval = cfg.Notifier.StepRetryInterval
	}
	engine := workflow.NewEngine(workflow.NewRedisStore(redisClient.Client, checkpointTTL), retryPolicy, appLogger)

	// Initialize services
	newsSvc := service.NewNewsService(newsRepo, appLogger, cfg.Notifier.MaxArticlesPerDigest, cfg.Notifier.NewsWindowDays)
	watchlistSvc := service.NewWatchlistService(userRepo, watchlistRepo, appLogger)
	flowSvc := service.NewFlowService(engine, userRepo, runRepo, aiRepo, newsSvc, watchlistSvc, mailClient, opsNotifier, appLogger)
	triggerSvc := service.NewTriggerService(cfg, redisClient.Client, appLogger)

	// Start the daily digest cron
	scheduler, err := service.NewDigestScheduler(cfg.Notifier.DigestCron, triggerSvc, appLogger)
	if err != nil {
		appLogger.Fatal("Invalid digest cron expression", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, flowSvc, appLogger)
	redisConsumer.Start(ctx)

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")

	triggerHandler := delivery.NewTriggerHandler(triggerSvc, appLogger)
	triggerHandler.RegisterRoutes(apiV1)

	runHandler := delivery.NewRunHandler(runRepo, appLogger)
	runHandler.RegisterRoutes(apiV1.Group("/runs"))

	stockHandler := delivery.NewStockHandler(newsRepo, appLogger)
	stockHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	appLogger.Info("Notifier service started. Waiting for events...")

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down notifier service...")
	redisConsumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Notifier service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "notifier-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-notifier.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing notifier-service CLI: %s\n", err)
		os.Exit(1)
	}
}
