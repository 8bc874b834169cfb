package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/billing"
	"github.com/buddyai/buddy-server-go/internal/config"
	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/handler"
	"github.com/buddyai/buddy-server-go/internal/httputil"
	"github.com/buddyai/buddy-server-go/internal/jobs"
	"github.com/buddyai/buddy-server-go/internal/metrics"
	"github.com/buddyai/buddy-server-go/internal/middleware"
	"github.com/buddyai/buddy-server-go/internal/redis"
	"github.com/buddyai/buddy-server-go/internal/repository"
	"github.com/buddyai/buddy-server-go/internal/rpc"
	"github.com/buddyai/buddy-server-go/internal/service"
	"github.com/buddyai/buddy-server-go/internal/sse"
	"github.com/buddyai/buddy-server-go/internal/storage"
	"github.com/buddyai/buddy-server-go/internal/stream"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.AppEnv,
			AttachStacktrace: true,
		}); err != nil {
			log.Warn().Err(err).Msg("failed to initialize sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
			log.Info().Str("environment", cfg.AppEnv).Msg("sentry initialized")
		}
	}

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	m := metrics.New()

	userRepo := repository.NewUserRepository(db.DB)
	accountRepo := repository.NewAccountRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	verificationRepo := repository.NewVerificationRepository(db.DB)
	agentRepo := repository.NewAgentRepository(db.DB)
	meetingRepo := repository.NewMeetingRepository(db.DB)
	intentRepo := repository.NewCallIntentRepository(db.DB)

	broker := sse.NewBroker(redisClient, m)
	defer broker.Close()

	// Platform interfaces stay untyped nil when unconfigured so the services
	// can report NOT_CONFIGURED instead of calling through a nil pointer.
	var (
		video    service.VideoPlatform
		chat     service.ChatPlatform
		payments billing.Provider
	)
	if cfg.StreamConfigured() {
		video = stream.NewVideoClient(stream.Config{
			APIKey:  cfg.StreamVideoAPIKey,
			Secret:  cfg.StreamVideoSecretKey,
			BaseURL: cfg.StreamVideoBaseURL,
			Timeout: cfg.ExternalHTTPTimeout(),
		})
	} else {
		log.Warn().Msg("stream video is not configured: meetings will stay unprovisioned")
	}
	if cfg.StreamChatAPIKey != "" && cfg.StreamChatSecretKey != "" {
		chat = stream.NewChatClient(stream.Config{
			APIKey:  cfg.StreamChatAPIKey,
			Secret:  cfg.StreamChatSecretKey,
			BaseURL: cfg.StreamChatBaseURL,
			Timeout: cfg.ExternalHTTPTimeout(),
		})
	}
	if cfg.StripeSecretKey != "" {
		payments = billing.NewStripeProvider(cfg.StripeSecretKey)
	}

	var objects storage.ObjectGetter
	s3Ctx, s3Cancel := context.WithTimeout(context.Background(), cfg.ExternalHTTPTimeout())
	s3Client, err := storage.NewS3Client(s3Ctx, cfg.AWSRegion)
	s3Cancel()
	if err != nil {
		log.Warn().Err(err).Msg("s3 unavailable: s3:// transcripts cannot be fetched")
	} else {
		objects = s3Client
	}
	fetcher := storage.NewFetcher(cfg.ExternalHTTPTimeout(), objects, config.MaxTranscriptBytes)

	authService := service.NewAuthService(
		db, userRepo, accountRepo, sessionRepo, verificationRepo, nil, cfg.SessionSecret,
	)
	agentService := service.NewAgentService(agentRepo)
	provisioner := service.NewCallProvisioner(video, intentRepo, meetingRepo, agentRepo, m)
	meetingService := service.NewMeetingService(db, meetingRepo, agentRepo, intentRepo, provisioner)
	transcriptService := service.NewTranscriptService(meetingRepo, userRepo, agentRepo, fetcher)
	tokenService := service.NewTokenService(video, chat)
	premiumService := service.NewPremiumService(payments, redisClient.Client, m)
	callEventService := service.NewCallEventService(meetingRepo, broker, m)
	rateLimiter := service.NewRateLimiter(redisClient.Client)

	rpcRouter := rpc.NewRouter(m)
	handler.RegisterAgentProcedures(rpcRouter, agentService)
	handler.RegisterMeetingProcedures(rpcRouter, meetingService, transcriptService, tokenService)
	handler.RegisterPremiumProcedures(rpcRouter, premiumService)
	log.Info().Strs("procedures", rpcRouter.Procedures()).Msg("rpc procedures registered")

	isProduction := cfg.IsProduction()
	sessionMiddleware := middleware.NewSessionMiddleware(authService)
	csrfMiddleware := middleware.NewCSRFMiddleware(isProduction)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)
	webhookSignatureMiddleware := middleware.NewWebhookSignatureMiddleware(cfg.StreamVideoSecretKey)
	authRateLimit := middleware.NewRateLimitMiddleware(
		rateLimiter, "auth", config.AuthRateLimit, config.AuthRateWindow, middleware.ByIP, false,
	)
	rpcRateLimit := middleware.NewRateLimitMiddleware(
		rateLimiter, "rpc", config.DefaultRateLimitPerMin, time.Minute, middleware.ByUser, true,
	)
	sentryMiddleware := sentryhttp.New(sentryhttp.Options{Repanic: true})

	authHandler := handler.NewAuthHandler(authService, isProduction)
	webhookHandler := handler.NewWebhookHandler(callEventService)
	eventsHandler := handler.NewEventsHandler(broker)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(sentryMiddleware.Handle)
	r.Use(securityHeadersMiddleware.Handler)
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		dbStatus, redisStatus := "ok", "ok"

		ctx, cancel := context.WithTimeout(r.Context(), config.DBPingTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			dbStatus, status = "error", http.StatusServiceUnavailable
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisStatus, status = "error", http.StatusServiceUnavailable
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status":    http.StatusText(status),
			"database":  dbStatus,
			"redis":     redisStatus,
			"timestamp": time.Now().UnixMilli(),
		})
	})
	r.Handle("/metrics", m.Handler())

	r.With(webhookSignatureMiddleware.Handler).Post("/api/webhooks/stream", webhookHandler.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware.Handler)

		r.With(middleware.RequireUser).Get("/api/events", eventsHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
			r.Use(csrfMiddleware.Handler)

			r.Route("/api/auth", func(r chi.Router) {
				r.Use(authRateLimit.Handler)
				r.Mount("/", authHandler.Routes())
			})

			r.With(rpcRateLimit.Handler).Handle("/api/trpc/{procedure}", rpcRouter)
		})
	})

	cleanupJob := jobs.NewCleanupJob(sessionRepo, verificationRepo, m, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	reconcileJob := jobs.NewReconcileJob(provisioner, intentRepo, m, cfg.ReconcileSchedule)
	if err := reconcileJob.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start reconcile job")
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	reconcileJob.Stop(shutdownCtx)

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
