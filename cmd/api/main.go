package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"conferencehub/config"
	"conferencehub/internal/adapters/auth"
	"conferencehub/internal/adapters/email"
	"conferencehub/internal/adapters/github"
	"conferencehub/internal/database/migrations"
	delivery "conferencehub/internal/delivery/http"
	"conferencehub/internal/delivery/http/controllers"
	"conferencehub/internal/delivery/http/middleware"
	"conferencehub/internal/domain"
	"conferencehub/internal/repository/postgres"
	redisrepo "conferencehub/internal/repository/redis"
	"conferencehub/internal/services"
)

// @title ConferenceHub API
// @version 1.0
// @description Event management backend with ticketing and activity subscriptions.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if err := migrations.Run(db); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	activityRepo := postgres.NewActivityRepository(db)

	scheduleCache := buildScheduleCache(cfg, logger)
	emailService := buildEmailService(cfg, logger)

	jwtCodec := auth.NewJWTCodec(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	authService := services.NewAuthService(
		userRepo,
		sessionRepo,
		hasher,
		jwtCodec,
		cfg.TokenExpiry,
		buildGitHubClient(cfg),
	)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo)
	ticketService := services.NewTicketService(ticketRepo, paymentRepo, enrollmentRepo)
	activityService := services.NewActivityService(
		activityRepo,
		enrollmentRepo,
		ticketRepo,
		userRepo,
		scheduleCache,
		emailService,
		logger,
	)

	mux := delivery.NewRouter(
		jwtCodec,
		controllers.NewAuthController(logger, authService),
		controllers.NewEnrollmentController(logger, enrollmentService),
		controllers.NewTicketController(logger, ticketService),
		controllers.NewActivityController(logger, activityService),
	)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}

// buildScheduleCache connects to Redis when REDIS_ADDR is set. Returns nil
// otherwise; the activity service then serves straight from Postgres.
func buildScheduleCache(cfg *config.Config, logger *slog.Logger) domain.ScheduleCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client, err := redisrepo.NewClient(context.Background(), cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, schedule cache disabled", "addr", cfg.RedisAddr, "err", err)
		return nil
	}
	return redisrepo.NewScheduleCache(client, cfg.CacheTTL)
}

func buildEmailService(cfg *config.Config, logger *slog.Logger) domain.EmailService {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    "ConferenceHub",
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	})
	if err != nil {
		logger.Warn("mailer unavailable, confirmation emails disabled", "provider", cfg.EmailProvider, "err", err)
		return nil
	}
	return services.NewEmailService(mailer, email.NewTemplateRenderer())
}

// buildGitHubClient returns nil when the OAuth app is not configured; the
// auth service then rejects GitHub logins.
func buildGitHubClient(cfg *config.Config) domain.GitHubClient {
	if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
		return nil
	}
	return github.NewClient(github.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURL,
	}, nil)
}
