package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"researchnett/docs"
	"researchnett/internal/auth"
	"researchnett/internal/cache"
	"researchnett/internal/config"
	"researchnett/internal/db"
	"researchnett/internal/eligibility"
	"researchnett/internal/handler"
	"researchnett/internal/logger"
	"researchnett/internal/mailer"
	"researchnett/internal/metrics"
	"researchnett/internal/notify"
	"researchnett/internal/repository"
	"researchnett/internal/router"
	"researchnett/internal/service"
	"researchnett/internal/session"
)

const shutdownTimeout = 10 * time.Second

// @title ResearchNett API
// @version 1.0
// @description Campus research-collaboration directory: member profiles, collaboration calls, interest notifications and founding-member admin.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger.Init(cfg.Env)
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		logger.GetLogger().Fatal("invalid configuration", zap.Error(err))
	}
	ctx := context.Background()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.GetLogger().Fatal("database init", zap.Error(err))
	}

	// Drop tables if RESET_DB environment variable is set
	if cfg.ResetDB {
		logger.Warn(ctx, "RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn(ctx, "Failed to drop tables", zap.Error(err))
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		logger.GetLogger().Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn(ctx, "Redis unreachable, sessions and drafts will not persist", zap.Error(err))
	}

	logger.Info(ctx, "Backend endpoints",
		zap.String("db_driver", cfg.DBDriver),
		zap.String("database", db.Describe(cfg.DBDriver, cfg.DatabaseDSN)),
		zap.String("redis", cfg.RedisAddr),
		zap.Bool("public_api_key", cfg.PublicAPIKey != ""),
	)

	m := metrics.New()
	hub := session.NewHub()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	adminRepo := repository.NewAdminRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	callRepo := repository.NewCallRepository(gormDB)
	engagementRepo := repository.NewEngagementRepository(gormDB)
	founderRepo := repository.NewFounderRepository(gormDB)
	feedbackRepo := repository.NewFeedbackRepository(gormDB)
	adRepo := repository.NewAdRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	draftStore := auth.NewDraftStore(cacheClient)
	resolver := session.NewResolver(adminRepo, cacheClient)
	watchDone := resolver.Watch(hub)

	mail := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	// Initialize services
	profileService := service.NewProfileService(profileRepo, draftStore, cacheClient)
	authService := service.NewAuthService(
		userRepo,
		profileService,
		jwtService,
		tokenStore,
		draftStore,
		mail,
		eligibility.New(cfg.InstitutionDomain),
		hub,
		service.AuthOptions{AppURL: cfg.AppURL, RequireEmailConfirmation: cfg.RequireEmailConfirmation},
	)
	callService := service.NewCallService(callRepo, profileRepo, engagementRepo, m)
	engagementService := service.NewEngagementService(callRepo, engagementRepo, m)
	notificationService := service.NewNotificationService(callRepo, engagementRepo, profileRepo, notify.NewCursorStore(cacheClient))
	founderService := service.NewFounderService(founderRepo, profileRepo, m)
	feedbackService := service.NewFeedbackService(feedbackRepo)
	adService := service.NewAdService(adRepo, profileRepo)
	adminService := service.NewAdminService(adminRepo, userRepo, founderRepo, feedbackRepo, hub)
	seedService := service.NewSeedService(userRepo, adminRepo, profileService, callService)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, router.Deps{
		JWT:      jwtService,
		Tokens:   tokenStore,
		Resolver: resolver,
		Metrics:  m,
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Profile:      handler.NewProfileHandler(profileService),
		Call:         handler.NewCallHandler(callService, engagementService),
		Notification: handler.NewNotificationHandler(notificationService),
		Ad:           handler.NewAdHandler(adService),
		Feedback:     handler.NewFeedbackHandler(feedbackService),
		Founder:      handler.NewFounderHandler(founderService),
		Admin:        handler.NewAdminHandler(adminService),
		Seed:         handler.NewSeedHandler(seedService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info(ctx, "Swagger documentation available", zap.String("url", swaggerURL(cfg)))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info(ctx, "Server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server forced to shutdown", zap.Error(err))
	}
	hub.Close()
	<-watchDone
	logger.Info(ctx, "Server exited")
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	// SwaggerHost may already include scheme (http:// or https://)
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
