package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"tixpay/internal/app"
	"tixpay/internal/config"
	"tixpay/internal/gateway"
	"tixpay/internal/handler"
	"tixpay/internal/jobs"
	"tixpay/internal/queue"
	internalRedis "tixpay/internal/redis"
	"tixpay/internal/repository/postgres"
	"tixpay/internal/service"
)

func main() {
	// Load .env if present, then configuration from the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, scheduler := wire(db, redisClient, nrApp, cfg)

	// Start the reconciliation schedule.
	scheduler.Start()
	log.Printf("Reconciler scheduled: %s", cfg.Reconciler.Schedule)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the scheduler and wait for an in-flight run to finish.
	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wire wires all dependencies and returns the HTTP server and the cron
// scheduler carrying the reconciliation job.
func wire(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *cron.Cron) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories and collaborators.
	paymentRepo := postgres.NewPaymentRepository(db)
	gatewayClient := gateway.NewClient(cfg.Gateway)
	publisher := queue.NewRedisPublisher(redisClient, cfg.Queue.Stream)

	// Initialize services.
	feeService := service.NewFeeService(cacheStore)
	paymentService := service.NewPaymentService(paymentRepo, gatewayClient, cfg.Gateway.CallbackBaseURL)
	reconciler := service.NewReconcilerService(paymentRepo, gatewayClient, publisher, lockStore, cfg.Reconciler.LockTTL)

	// Initialize handlers.
	feesHandler := handler.NewFeesHandler(feeService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	reconcileHandler := handler.NewReconcileHandler(reconciler)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		FeesHandler:      feesHandler,
		PaymentHandler:   paymentHandler,
		ReconcileHandler: reconcileHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	// Schedule the reconciliation loop.
	scheduler := cron.New()
	if err := jobs.ScheduleReconciler(scheduler, cfg.Reconciler.Schedule, reconciler); err != nil {
		log.Fatalf("failed to schedule reconciler: %v", err)
	}

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, scheduler
}
