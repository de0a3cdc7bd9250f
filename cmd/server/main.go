package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"Tuiter/internal/api/middleware"
	"Tuiter/internal/api/routes"
	"Tuiter/internal/config"
	"Tuiter/internal/core/reactions"
	"Tuiter/internal/db/backend"
	"Tuiter/internal/events"
	"Tuiter/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		log.Fatal("Failed to set up tracing:", err)
	}

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	log.Printf("Connected to %s store", cfg.StoreBackend)

	opts := []reactions.Option{
		reactions.WithLogger(logger),
		reactions.WithMetrics(reactions.NewMetrics(prometheus.DefaultRegisterer)),
		reactions.WithTimeout(cfg.ToggleTimeout),
		reactions.WithPublishTimeout(cfg.PublishTimeout),
	}

	var publisher *events.KafkaPublisher
	if cfg.KafkaBrokers != "" {
		publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatal("Failed to create Kafka publisher:", err)
		}
		opts = append(opts, reactions.WithPublisher(publisher))
		log.Printf("Publishing reaction events to %s", cfg.KafkaTopic)
	}

	reactionService := reactions.NewReactionService(store.Reactions, opts...)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	limiterStop := make(chan struct{})
	go rateLimiter.Run(limiterStop)

	r := newRouter(reactionService, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Tuiter reactions API starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	close(limiterStop)
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Printf("Failed to close Kafka publisher: %v", err)
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("Failed to close store: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Failed to flush traces: %v", err)
	}
}

// newRouter mounts the API behind the rate limiter. Health and metrics stay
// outside it so health checks and scrapers are never throttled.
func newRouter(reactionService reactions.Service, rateLimiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		routes.RegisterReactionRoutes(r, reactionService)
	})

	return r
}
