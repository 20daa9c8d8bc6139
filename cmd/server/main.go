package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/doctrot/site-server-go/internal/config"
	"github.com/doctrot/site-server-go/internal/database"
	"github.com/doctrot/site-server-go/internal/email"
	"github.com/doctrot/site-server-go/internal/handler"
	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/jobs"
	"github.com/doctrot/site-server-go/internal/middleware"
	"github.com/doctrot/site-server-go/internal/redis"
	"github.com/doctrot/site-server-go/internal/repository"
	"github.com/doctrot/site-server-go/internal/service"
	"github.com/doctrot/site-server-go/internal/sse"
	"github.com/doctrot/site-server-go/internal/util"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(cfg.Production); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	cancel()
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("database connected")

	// Redis is optional: without it limits, lockouts and SSE fan-out stay in
	// this process.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
	}

	hasher, err := util.NewPasswordHasher(cfg.PasswordHashAlgorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create password hasher")
	}

	var (
		limiter service.Limiter
		lockout service.LoginLockout
	)
	if redisClient != nil {
		limiter = service.NewRateLimiter(redisClient.Client)
		lockout = service.NewRedisLockout(redisClient.Client, cfg.LoginMaxFailures, cfg.LoginLockoutDuration())
	} else {
		limiter = service.NewMemoryRateLimiter()
		lockout = service.NewMemoryLockout(cfg.LoginMaxFailures, cfg.LoginLockoutDuration())
	}

	var sender email.Sender
	if cfg.EmailJSConfigured() {
		sender = email.NewEmailJSSender(email.EmailJSConfig{
			ServiceID:  cfg.EmailJSServiceID,
			TemplateID: cfg.EmailJSTemplateID,
			PublicKey:  cfg.EmailJSPublicKey,
			PrivateKey: cfg.EmailJSPrivateKey,
			Timeout:    config.EmailSendTimeout,
		})
	} else {
		sender = email.NewLogSender(log.Logger)
	}
	log.Info().Str("provider", sender.Name()).Msg("email sender configured")

	adminRepo := repository.NewAdminUserRepository(db.DB)
	tokenRepo := repository.NewPasswordResetTokenRepository(db.DB)
	contactRepo := repository.NewContactSubmissionRepository(db.DB)
	blogRepo := repository.NewBlogRepository(db.DB)

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	accountService := service.NewAccountService(adminRepo, hasher, service.AccountOptions{
		DefaultPassword: cfg.AdminDefaultPassword,
		PresetHash:      cfg.AdminPasswordHash,
		Lockout:         lockout,
	})
	resetService := service.NewPasswordResetService(db, adminRepo, tokenRepo, hasher, service.ResetOptions{
		SiteOrigin: cfg.SiteOrigin,
		TTL:        cfg.ResetTokenTTL(),
		Sender:     sender,
	})
	contactService := service.NewContactService(contactRepo, broker)
	blogService := service.NewBlogService(blogRepo)

	initCtx, initCancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	created, err := accountService.Initialize(initCtx)
	initCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize admin account")
	}
	if created {
		log.Info().Msg("admin account created with default credentials")
	}

	csrfMiddleware := middleware.NewCSRFMiddleware(cfg.Production)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(cfg.Production)
	publicBodyLimit := middleware.NewBodyLimitMiddleware(config.PublicMaxBodySize)
	adminBodyLimit := middleware.NewBodyLimitMiddleware(config.AdminMaxBodySize)
	adminAuth := middleware.NewAdminAuthMiddleware(accountService)

	loginLimit := middleware.NewIPRateLimitMiddleware(limiter, config.LoginRateLimit, config.IPRateLimitWindow, "login")
	forgotLimit := middleware.NewIPRateLimitMiddleware(limiter, config.ForgotPasswordRateLimit, config.IPRateLimitWindow, "forgot")
	contactLimit := middleware.NewIPRateLimitMiddleware(limiter, config.ContactRateLimit, config.IPRateLimitWindow, "contact")

	adminHandler := handler.NewAdminHandler(accountService, resetService, contactService, blogService, handler.AdminOptions{
		Auth:              adminAuth.Handler,
		LoginLimit:        loginLimit.Handler,
		ForgotLimit:       forgotLimit.Handler,
		Events:            handler.NewEventsHandler(broker, contactService),
		ResetLinkFallback: cfg.ResetLinkFallback,
	})
	publicHandler := handler.NewPublicHandler(contactService, blogService, contactLimit.Handler)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), config.DBPingTimeout)
		defer cancel()

		status, code := "ok", http.StatusOK
		if err := db.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("health check: database ping failed")
			status, code = "degraded", http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, map[string]any{
			"status":    status,
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins(cfg),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Use(httprate.LimitByIP(config.PublicAPIRateLimit, time.Minute))
		r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
		r.Use(publicBodyLimit.Handler)
		r.Mount("/", publicHandler.Routes())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Route("/api", func(r chi.Router) {
			r.Use(csrfMiddleware.Handler)
			r.Use(adminBodyLimit.Handler)
			r.Mount("/", adminHandler.Routes())
		})
		r.Handle("/*", handler.StaticFileServer(cfg.StaticDir+"/admin", "/admin"))
	})

	r.NotFound(handler.StaticFileServer(cfg.StaticDir+"/site", "").ServeHTTP)

	cleanupJob := jobs.NewCleanupJob(config.CleanupJobInterval, jobs.CleanupTask{
		Name: "password reset tokens",
		Run:  resetService.CleanupExpired,
	})
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0, // SSE streams stay open
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

	// Open SSE streams would otherwise hold Shutdown until its deadline.
	broker.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// corsOrigins defaults to the site itself when no list is configured.
func corsOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) > 0 {
		return cfg.CORSAllowedOrigins
	}
	return []string{cfg.SiteOrigin}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
