package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/alerts"
	"github.com/pranishuprety/Respondrr/internal/api/handlers"
	"github.com/pranishuprety/Respondrr/internal/cache/redis"
	"github.com/pranishuprety/Respondrr/internal/emergency"
	"github.com/pranishuprety/Respondrr/internal/identity"
	"github.com/pranishuprety/Respondrr/internal/llm"
	"github.com/pranishuprety/Respondrr/internal/metrics"
	"github.com/pranishuprety/Respondrr/internal/middleware/ratelimit"
	"github.com/pranishuprety/Respondrr/internal/middleware/security"
	"github.com/pranishuprety/Respondrr/internal/middleware/validation"
	"github.com/pranishuprety/Respondrr/internal/scheduler"
	"github.com/pranishuprety/Respondrr/internal/storage/supabase"
	"github.com/pranishuprety/Respondrr/internal/videocall"
	"github.com/pranishuprety/Respondrr/internal/vitals"
	"github.com/pranishuprety/Respondrr/pkg/config"
	appLogger "github.com/pranishuprety/Respondrr/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Respondr monitoring server")

	metrics.Init()

	store := supabase.NewClient(
		cfg.Supabase.URL,
		cfg.Supabase.ServiceKey,
		time.Duration(cfg.Supabase.TimeoutSec)*time.Second,
	)

	directoryClient := identity.NewClient(
		cfg.Supabase.URL,
		cfg.Supabase.ServiceKey,
		time.Duration(cfg.Supabase.TimeoutSec)*time.Second,
	)

	var directory identity.Directory = directoryClient
	if cfg.Redis.Enabled {
		cache, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, identity lookups uncached", zap.Error(err))
		} else {
			defer cache.Close()
			directory = identity.NewCachedDirectory(directoryClient, cache)
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second,
	)

	roomProvider := videocall.NewClient(
		cfg.Daily.APIURL,
		cfg.Daily.APIKey,
		time.Duration(cfg.Daily.TimeoutSec)*time.Second,
	)

	vitalsService := vitals.NewService(store, directory)
	notifier := emergency.NewAlertNotifier(store)
	emergencyService := emergency.NewService(store, directory, vitalsService, notifier)
	queueProcessor := emergency.NewQueueProcessor(store, emergencyService, cfg.Scheduler.QueueBatchSize)
	analyzer := alerts.NewAnalyzer(vitalsService, llmClient, store, directory)
	callService := videocall.NewService(store, roomProvider)

	schedCtx, stopSched := context.WithCancel(context.Background())
	sched := scheduler.New()
	sched.Register("hourly_alert_check", cfg.Scheduler.AlertCheckInterval, analyzer.RunHourlySweep)
	sched.Register("hourly_emergency_check", cfg.Scheduler.EmergencyCheckInterval, emergencyService.RunHourlySweep)
	sched.Register("emergency_queue_processor", cfg.Scheduler.QueueDrainInterval, func(ctx context.Context) error {
		queueProcessor.Drain(ctx)
		return nil
	})
	sched.Start(schedCtx)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))
	app.Use(validation.Middleware(validation.Config{}))

	emergencyHandler := handlers.NewEmergencyHandler(emergencyService)
	alertsHandler := handlers.NewAlertsHandler(store)
	callHandler := handlers.NewVideoCallHandler(callService)
	adminHandler := handlers.NewAdminHandler(analyzer, emergencyService, queueProcessor)

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")

	api.Post("/emergency/check", emergencyHandler.CheckPatient)
	api.Post("/emergency/:id/resolve", emergencyHandler.Resolve)

	api.Post("/alerts/:id/acknowledge", alertsHandler.Acknowledge)

	api.Post("/video/initiate-call", callHandler.InitiateCall)
	api.Post("/video/accept-call", callHandler.AcceptCall)
	api.Post("/video/end-call", callHandler.EndCall)
	api.Post("/video/reject-call", callHandler.RejectCall)

	adminLimiter := ratelimit.New(ratelimit.Config{MaxRequestsPerMinute: 10})
	defer adminLimiter.Stop()

	admin := api.Group("/admin", adminLimiter.Middleware())
	admin.Post("/run-alert-check", adminHandler.RunAlertCheck)
	admin.Post("/run-emergency-check", adminHandler.RunEmergencyCheck)
	admin.Post("/drain-queue", adminHandler.DrainQueue)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	stopSched()
	sched.Stop()
	app.Shutdown()
	appLogger.Info("Server stopped")
}
