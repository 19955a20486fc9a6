package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"tally/internal/config"
	"tally/internal/database"
	"tally/internal/events"
	"tally/internal/identity"
	"tally/internal/logger"
	"tally/internal/router"
	"tally/internal/telemetry"
	"tally/internal/validator"
)

// @title           Tally API
// @version         1.0
// @description     Tally tracks personal expenses, their line items, billing periods and recurring templates.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Identity
	verifier, otp, redisClient, err := newIdentity(ctx, appConfig)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Observability
	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           appConfig.OTelEnabled,
		CollectorEndpoint: appConfig.OTelEndpoint,
		SamplingRatio:     appConfig.OTelSamplingRatio,
		ServiceName:       appConfig.OTelServiceName,
		Insecure:          appConfig.OTelInsecure,
	}, log.Desugar())
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Warnw("failed to shut down tracer", "error", err)
		}
	}()
	metrics := telemetry.NewMetrics()

	// Events
	publisher, err := newPublisher(appConfig)
	if err != nil {
		return err
	}
	publisher = events.WithObserver(publisher, metrics.ObserveEvent)
	defer publisher.Close()

	deps := router.Deps{
		DB:               dbManager.DB(),
		Verifier:         verifier,
		OTP:              otp,
		Publisher:        publisher,
		Metrics:          metrics,
		DefaultCurrency:  appConfig.DefaultCurrency,
		RequestTimeout:   appConfig.RequestTimeout,
		CORSAllowOrigins: appConfig.CORSAllowOrigins,
		OTPRateLimit:     appConfig.OTPRateLimit,
		OTPRateBurst:     appConfig.OTPRateBurst,
		MetricsAPIKey:    appConfig.MetricsAPIKey,
	}
	if tracer.IsEnabled() {
		deps.TracingService = appConfig.OTelServiceName
	}

	srv := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      router.New(deps),
		ReadTimeout:  appConfig.ReadTimeout,
		WriteTimeout: appConfig.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting Tally API on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newIdentity picks the token verifier for the configured mode. Remote mode
// asks the provider on every request unless a Redis cache is configured.
func newIdentity(ctx context.Context, cfg *config.Config) (identity.Verifier, identity.OTPProvider, *redis.Client, error) {
	var (
		verifier identity.Verifier
		otp      identity.OTPProvider
	)

	if cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "" {
		client := identity.NewGoTrueClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.IdentityTimeout)
		otp = client
		verifier = client
	}
	if cfg.IdentityMode == config.IdentityModeJWT {
		verifier = identity.NewJWTVerifier(cfg.SupabaseJWTSecret, cfg.SupabaseJWTAudience)
	}

	if cfg.RedisAddr == "" {
		return verifier, otp, nil, nil
	}

	redisClient, err := identity.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	verifier = identity.NewCachingVerifier(verifier, identity.NewRedisTokenStore(redisClient), cfg.TokenCacheTTL)
	return verifier, otp, redisClient, nil
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Get().Info("AMQP_URL not set, expense events are discarded")
		return events.NopPublisher{}, nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to message broker: %w", err)
	}
	return publisher, nil
}
