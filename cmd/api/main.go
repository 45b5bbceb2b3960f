// Package main is the entry point for the feed API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/api"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/auth"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/candidate"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/config"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/db"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/feed"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/health"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/invalidator"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/middleware"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/profile"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/scoring"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/social"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Feed API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	ctx := context.Background()

	// Tracing (no-op provider when disabled)
	tracingProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:    "feed-api",
		ServiceVersion: "0.1.0",
		Enabled:        cfg.TracingEnabled,
		Environment:    cfg.Env,
		ExporterType:   "otlp-grpc",
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplingRate:   0.1,
		InsecureMode:   cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Shared metrics registry
	registry := prometheus.NewRegistry()
	feedMetrics := feed.NewMetrics()
	if err := feedMetrics.Register(registry); err != nil {
		logger.Error("failed to register feed metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}

	// Storage: Postgres when configured, in-memory otherwise
	var (
		candidateStore candidate.Store
		graphStore     social.GraphStore
		behaviorStore  social.BehaviorStore
		topicStore     social.TopicStore
		negativeStore  social.NegativeStore
		geoResolver    social.GeoResolver
		dbChecker      api.HealthChecker
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		candidateStore = candidate.NewPostgresStore(conn, candidate.DefaultEligibilityWindow)
		socialStore := social.NewPostgresStore(conn)
		graphStore = socialStore
		behaviorStore = socialStore
		topicStore = socialStore
		negativeStore = socialStore
		geoResolver = socialStore
		dbChecker = health.NewDBChecker(conn)
		logger.Info("using postgres storage")
	} else {
		memCandidates := candidate.NewInMemoryStore()
		memSocial := social.NewInMemoryStore()
		candidateStore = memCandidates
		graphStore = memSocial
		behaviorStore = memSocial
		topicStore = memSocial
		negativeStore = memSocial
		geoResolver = memSocial
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Redis: profile cache and distributed rate limiting when configured
	var (
		profileCache   profile.Cache
		rateLimitStore middleware.RateLimitStore
		redisChecker   api.HealthChecker
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		profileCache = profile.NewRedisCache(redisClient, logger)
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient,
			middleware.WithRateLimitMetrics(httpMetrics),
			middleware.WithRateLimitLogger(logger))
		redisChecker = health.NewRedisChecker(redisClient)
		logger.Info("using redis for profile cache and rate limiting")
	} else {
		profileCache = profile.NewMemoryCache()
		memStore := middleware.NewInMemoryRateLimitStore()
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					memStore.Cleanup()
				}
			}
		}()
		rateLimitStore = memStore
		logger.Warn("REDIS_URL not set, using in-process cache and rate limiting")
	}

	// Scoring weights, optionally calibrated from file
	weights := scoring.DefaultWeights()
	if cfg.CalibrationPath != "" {
		weights, err = scoring.LoadCalibration(cfg.CalibrationPath)
		if err != nil {
			logger.Error("failed to load calibration", "path", cfg.CalibrationPath, "error", err)
			os.Exit(1)
		}
		logger.Info("loaded scoring calibration", "path", cfg.CalibrationPath)
	}

	profileBuilder := profile.NewBuilder(
		graphStore, behaviorStore, topicStore, geoResolver,
		profileCache, weights,
		profile.BuilderConfig{
			TTL:           cfg.ProfileCacheTTL,
			SourceTimeout: cfg.SignalTimeout,
		},
		logger,
	)

	feedService, err := feed.NewService(feed.ServiceConfig{
		Candidates: candidateStore,
		Profiles:   profileBuilder,
		Filter:     feed.NewNegativeFilter(negativeStore, logger),
		Weights:    weights,
		Metrics:    feedMetrics,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create feed service", "error", err)
		os.Exit(1)
	}

	var jwtService *auth.JWTService
	if cfg.JWTPreviousSecret != "" {
		jwtService = auth.NewJWTServiceWithRotation(cfg.JWTSecret, cfg.JWTPreviousSecret)
	} else {
		jwtService = auth.NewJWTService(cfg.JWTSecret)
	}

	feedHandlers := api.NewFeedHandlers(feedService, jwtService, logger)
	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		DBChecker:    dbChecker,
		RedisChecker: redisChecker,
	})

	// Mutation stream invalidation keeps cached profiles fresh
	if cfg.MutationStreamURL != "" {
		client, err := invalidator.NewClient(
			invalidator.DefaultConfig(cfg.MutationStreamURL),
			profileBuilder, logger)
		if err != nil {
			logger.Error("invalid mutation stream configuration", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("mutation stream client stopped", "error", err)
			}
		}()
	}

	globalLimit := middleware.DefaultGlobalLimit()
	if cfg.GlobalRateLimit > 0 {
		globalLimit.RequestsPerWindow = cfg.GlobalRateLimit
	}
	feedLimit := middleware.DefaultFeedLimit()
	if cfg.FeedRateLimit > 0 {
		feedLimit.RequestsPerWindow = cfg.FeedRateLimit
	}

	handler := newRouter(routerConfig{
		FeedHandlers:   feedHandlers,
		HealthHandlers: healthHandlers,
		JWTService:     jwtService,
		RateLimitStore: rateLimitStore,
		HTTPMetrics:    httpMetrics,
		Registry:       registry,
		Logger:         logger,
		GlobalLimit:    globalLimit,
		FeedLimit:      feedLimit,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: true,
			MaxAge:           300,
		},
		TracingEnabled: tracingProvider.IsEnabled(),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracingProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down tracing", "error", err)
	}

	logger.Info("server stopped")
}
