package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"example.com/notes-ai/internal/ai"
	"example.com/notes-ai/internal/auth"
	"example.com/notes-ai/internal/config"
	"example.com/notes-ai/internal/db"
	"example.com/notes-ai/internal/events"
	"example.com/notes-ai/internal/httpx"
	"example.com/notes-ai/internal/inflight"
	"example.com/notes-ai/internal/logger"
	"example.com/notes-ai/internal/metrics"
	"example.com/notes-ai/internal/notes"
	"example.com/notes-ai/internal/pages"
	"example.com/notes-ai/internal/tracing"
)

func main() {
	log, err := logger.New("notes-ai")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) (err error) {
	if _, err := maxprocs.Set(); err != nil {
		return fmt.Errorf("maxprocs: %w", err)
	}
	log.Infow("startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if cfg.Auth.SupabaseURL == "" {
		return errors.New("SUPABASE_URL is required")
	}

	ctx := context.Background()

	// tracing
	shutdownTracing, err := tracing.Init(cfg.TracingEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = multierr.Append(err, shutdownTracing(sctx))
	}()

	// postgres
	if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	dbConn, err := db.Open(ctx, db.Options{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbConn.Close()) }()

	repo, err := notes.NewRepository(ctx, dbConn.SQL)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, repo.Close()) }()

	// in-flight limiter: redis when shared across replicas, in-process otherwise
	var limiter inflight.Limiter = inflight.NewLocal()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		perr := rdb.Ping(pctx).Err()
		cancel()
		if perr != nil {
			return fmt.Errorf("could not connect to redis: %w", perr)
		}
		defer func() { err = multierr.Append(err, rdb.Close()) }()
		limiter = inflight.NewRedis(rdb, "notes-ai:ask:", cfg.AI.Timeout+10*time.Second)
	}

	// note events
	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer func() { err = multierr.Append(err, publisher.Close()) }()

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	provider := auth.NewSupabase(cfg.Auth.SupabaseURL, cfg.Auth.AnonKey, 10*time.Second)
	cookies := auth.Cookies{MaxAge: cfg.Auth.SessionMaxAge, Secure: cfg.Auth.CookieSecure}
	generator := ai.NewHuggingFace(cfg.AI.Endpoint, cfg.AI.Token, cfg.AI.MaxNewTokens, cfg.AI.Temperature, cfg.AI.Timeout)
	pipeline := ai.NewPipeline(repo, generator, log, m)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(httpx.RequestLogger(log, "/health", "/metrics"))
	r.Use(auth.NewGuard(provider, cookies, cfg.BaseURL, log).Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.Ping(r.Context()); err != nil {
			log.Warnw("health", "ERROR", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Mount("/auth", auth.NewHandlers(provider, cookies, log).Routes())
	r.Mount("/api/notes", notes.NewHandlers(repo,
		notes.WithLogger(log),
		notes.WithMetrics(m),
		notes.WithPublisher(publisher),
	).Routes())
	r.Post("/api/ai/ask", ai.NewHandlers(pipeline, limiter, log).Ask)
	r.Mount("/", pages.NewHandlers(repo, cfg.Editor.Debounce, log).Routes())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "api listening", "addr", cfg.HTTPAddr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
