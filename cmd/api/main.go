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

	"applyfollow-backend/config"
	_ "applyfollow-backend/docs" // Important for Swagger
	v1 "applyfollow-backend/internal/delivery/http/v1"
	"applyfollow-backend/internal/repository/postgres"
	"applyfollow-backend/internal/scheduler"
	"applyfollow-backend/internal/usecase"
	"applyfollow-backend/migrations"
	"applyfollow-backend/pkg/auth"
	"applyfollow-backend/pkg/database"
	"applyfollow-backend/pkg/email"
	"applyfollow-backend/pkg/logger"
	"applyfollow-backend/pkg/metrics"
	"applyfollow-backend/pkg/oauth"
	"applyfollow-backend/pkg/redis"
	"applyfollow-backend/pkg/security"
	"applyfollow-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           ApplyFollow API
// @version         1.0
// @description     Job application tracking backend.
// @host            localhost:8080
// @BasePath        /api
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
	logger.Log.Info("Starting applyfollow backend", "port", cfg.Port, "env", cfg.AppEnv)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	audit := security.NewAuditLogger("applyfollow-backend", cfg.AppEnv)
	defer func() { _ = audit.Sync() }()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, dbPool, migrations.FS)
		if err != nil {
			logger.Log.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Log.Info("Migrations applied", "count", len(applied))
	}

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redis.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	eventRepo := postgres.NewCalendarEventRepository(dbPool)
	cvRepo := postgres.NewCVRepository(dbPool)
	messageRepo := postgres.NewContactMessageRepository(dbPool)
	adminRepo := postgres.NewAdminRepository(dbPool)

	// 6. Setup Infrastructure Services
	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		logger.Log.Error("Failed to create token service", "error", err)
		os.Exit(1)
	}

	loginTracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.RateLimit.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.RateLimit.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.RateLimit.FailedLoginBlockMinutes) * time.Minute,
	}, redisClient, audit)

	mailer := email.NewMailer(cfg.SMTP)

	var archiver storage.Archiver = storage.NopArchiver{}
	if cfg.S3.Enabled {
		s3Archiver, err := storage.NewS3Archiver(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			logger.Log.Error("Failed to create S3 archiver", "error", err)
			os.Exit(1)
		}
		archiver = s3Archiver
	}

	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		logger.Log.Warn("Unknown reminder timezone, using UTC", "timezone", cfg.Reminder.Timezone, "error", err)
		loc = time.UTC
	}
	reminders := scheduler.NewReminderJob(eventRepo, mailer, loc)
	if err := reminders.Init(ctx); err != nil {
		// The flag starts raised so the first sweep checks the database itself.
		logger.Log.Warn("Failed to read pending alarms", "error", err)
		reminders.Trigger()
	}

	oauthRequests := oauth.NewRequestCache(cfg.OAuth2.StateTTL)
	oauthProviders := oauthRegistry(cfg)
	metrics.Register()

	// 7. Setup UseCases
	authUC := usecase.NewAuthUsecase(userRepo, tokens, loginTracker, audit)
	userUC := usecase.NewUserUsecase(userRepo, audit)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, companyRepo)
	companyUC := usecase.NewCompanyUsecase(companyRepo)
	calendarUC := usecase.NewCalendarUsecase(eventRepo, reminders)
	cvUC := usecase.NewCVUsecase(userRepo, cvRepo, archiver)
	contactUC := usecase.NewContactUsecase(messageRepo, mailer, cfg.SMTP.AdminTo)
	adminUC := usecase.NewAdminUsecase(adminRepo, userRepo, applicationRepo, messageRepo, audit)

	healthDeps := map[string]usecase.Pinger{"database": usecase.PingFunc(dbPool.Ping)}
	if redisClient != nil {
		healthDeps["redis"] = usecase.PingFunc(func(ctx context.Context) error {
			return redis.HealthCheck(ctx, redisClient)
		})
	}
	healthUC := usecase.NewHealthUsecase(healthDeps)

	// 8. Setup Scheduler
	jobs, err := scheduler.New(scheduler.Config{
		ReminderInterval:    cfg.Reminder.Interval,
		OAuth2SweepInterval: cfg.OAuth2.StateSweepInterval,
		Location:            loc,
	}, reminders, oauthRequests)
	if err != nil {
		logger.Log.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}
	jobs.Start()

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:          authUC,
		UserUC:          userUC,
		ApplicationUC:   applicationUC,
		CompanyUC:       companyUC,
		CalendarUC:      calendarUC,
		CVUC:            cvUC,
		ContactUC:       contactUC,
		AdminUC:         adminUC,
		HealthUC:        healthUC,
		Tokens:          tokens,
		OAuth2Providers: oauthProviders,
		OAuth2Requests:  oauthRequests,
		Redis:           redisClient,
		Audit:           audit,
		Config:          cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	jobs.Stop()
	contactUC.Wait()

	logger.Log.Info("Server exiting")
}

func oauthRegistry(cfg *config.Config) *oauth.Registry {
	callback := func(provider string) string {
		return cfg.OAuth2.CallbackBaseURL + "/api/oauth2/callback/" + provider
	}

	var providers []*oauth.Provider
	if cfg.OAuth2.Google.Enabled() {
		providers = append(providers, oauth.NewGoogleProvider(
			cfg.OAuth2.Google.ClientID, cfg.OAuth2.Google.ClientSecret, callback(oauth.ProviderGoogle)))
	}
	if cfg.OAuth2.GitHub.Enabled() {
		providers = append(providers, oauth.NewGitHubProvider(
			cfg.OAuth2.GitHub.ClientID, cfg.OAuth2.GitHub.ClientSecret, callback(oauth.ProviderGitHub)))
	}

	registry := oauth.NewRegistry(providers...)
	logger.Log.Info("OAuth2 providers configured", "providers", registry.Names())
	return registry
}
