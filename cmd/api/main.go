package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobboard-backend/config"
	_ "go-jobboard-backend/docs" // Important for Swagger
	"go-jobboard-backend/internal/app"
	v1 "go-jobboard-backend/internal/delivery/http/v1"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/email"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/notify"
	"go-jobboard-backend/pkg/payment"
	"go-jobboard-backend/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// @title           Job Board API
// @version         1.0
// @description     Job board backend: companies post jobs, seekers apply, employers run the hiring pipeline.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting job board backend", "port", cfg.Port, "storage", cfg.StorageDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Storage
	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()
	repos := storage.Repos

	// 4. Optional Redis for shared rate limits
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limits are per instance", "error", err)
		} else {
			defer redisClient.Close()
		}
	}

	// 5. Setup Notifications
	if !cfg.SMTPConfigured() {
		logger.Log.Warn("SMTP not configured - notifications will be logged only")
	}
	templates, err := email.NewTemplates()
	if err != nil {
		logger.Log.Error("Failed to parse email templates", "error", err)
		os.Exit(1)
	}
	dispatcher := notify.NewDispatcher(email.NewSender(cfg), templates, cfg.NotifyWorkers, cfg.NotifyQueueSize)

	// 6. Setup UseCases
	userUC := usecase.NewUserUsecase(repos.Users)
	companyUC := usecase.NewCompanyUsecase(repos.Companies, repos.Users, repos.Jobs)
	jobUC := usecase.NewJobUsecase(repos.Jobs, repos.Companies, repos.Users, dispatcher, cfg.FrontendURL)
	applicationUC := usecase.NewApplicationUsecase(repos.Applications, repos.Jobs, repos.Users, repos.Companies, dispatcher, cfg.FrontendURL)
	savedJobUC := usecase.NewSavedJobUsecase(repos.SavedJobs, repos.Jobs)
	jobAlertUC := usecase.NewJobAlertUsecase(repos.JobAlerts, repos.Jobs)
	paymentUC := usecase.NewPaymentUsecase(repos.PaymentEvents, repos.Jobs, repos.Users, repos.Companies, dispatcher, cfg.FrontendURL)
	adminUC := usecase.NewAdminUsecase(repos.Stats, jobUC, companyUC)

	checks := map[string]usecase.HealthCheck{}
	if storage.Pool != nil {
		checks["database"] = storage.Pool.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 7. Background count reconciliation
	if cfg.ReconcileInterval > 0 {
		go usecase.NewReconciler(repos.Jobs).Run(ctx, cfg.ReconcileInterval)
	}

	// 8. Setup Auth (HS256 secret and/or JWKS)
	var jwks *auth.Provider
	if cfg.JWKSURL != "" {
		jwks = auth.NewProvider(cfg.JWKSURL)
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		UserUC:        userUC,
		CompanyUC:     companyUC,
		JobUC:         jobUC,
		ApplicationUC: applicationUC,
		SavedJobUC:    savedJobUC,
		JobAlertUC:    jobAlertUC,
		PaymentUC:     paymentUC,
		AdminUC:       adminUC,
		HealthUC:      healthUC,
		Users:         repos.Users,
		Verifier:      auth.NewTokenVerifier(cfg.JWTSecret, jwks),
		Webhooks:      payment.NewVerifier(cfg.PaymentWebhookSecret, cfg.PaymentWebhookTolerance),
		Redis:         redisClient,
		FrontendURL:   cfg.FrontendURL,
		RateLimit: v1.RateLimitSettings{
			Window:          cfg.RateLimitWindow(),
			GlobalThreshold: cfg.RateLimitGlobalThreshold,
			WriteThreshold:  cfg.RateLimitWriteThreshold,
		},
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Log.Warn("Notification queue not fully drained", "error", err)
	}

	logger.Log.Info("Server exiting")
}
