package main

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/api"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/auth"
	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/middleware"
)

// routerConfig collects everything the HTTP surface needs. Storage and
// service wiring stay in main; this only assembles routes and middleware.
type routerConfig struct {
	FeedHandlers   *api.FeedHandlers
	HealthHandlers *api.HealthHandlers
	JWTService     *auth.JWTService
	RateLimitStore middleware.RateLimitStore
	HTTPMetrics    *middleware.Metrics
	Registry       *prometheus.Registry
	Logger         *slog.Logger
	GlobalLimit    middleware.RateLimitConfig
	FeedLimit      middleware.RateLimitConfig
	CORS           middleware.CORSConfig
	TracingEnabled bool
}

// newRouter builds the route table and wraps it in the middleware chain,
// outermost first: RequestID -> Tracing -> Logging -> HTTPMetrics -> CORS
// -> global rate limit.
func newRouter(cfg routerConfig) http.Handler {
	mux := http.NewServeMux()

	// Authentication runs first so the feed limit keys by user, not IP.
	// The feed limiter's keys are scoped so anonymous requests don't share
	// a bucket with the global per-IP limiter.
	feedKey := middleware.ScopedKeyFunc("feed", middleware.UserKeyFunc())
	mux.Handle("/feed",
		api.Authenticate(cfg.JWTService, cfg.Logger)(
			middleware.RateLimiter(cfg.RateLimitStore, cfg.FeedLimit, feedKey, cfg.HTTPMetrics)(
				http.HandlerFunc(cfg.FeedHandlers.GetFeed))))
	mux.HandleFunc("/health", cfg.HealthHandlers.Health)
	mux.HandleFunc("/ready", cfg.HealthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"feed-api","version":"0.1.0"}`)); err != nil {
			cfg.Logger.Error("failed to write response", "error", err)
		}
	})

	var handler http.Handler = mux
	handler = middleware.RateLimiter(cfg.RateLimitStore, cfg.GlobalLimit, middleware.IPKeyFunc(), cfg.HTTPMetrics)(handler)
	handler = middleware.CORS(cfg.CORS)(handler)
	handler = middleware.HTTPMetrics(cfg.HTTPMetrics)(handler)
	handler = middleware.Logging(cfg.Logger)(handler)
	if cfg.TracingEnabled {
		handler = middleware.Tracing("feed-api")(handler)
	}
	handler = middleware.RequestID(handler)
	return handler
}
