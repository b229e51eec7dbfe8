package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"statedeck/internal/platform/config"
	"statedeck/internal/platform/httpserver"
	"statedeck/internal/platform/logger"
	"statedeck/internal/platform/metrics"
	"statedeck/pkg/platform/httputil"
	"statedeck/pkg/platform/middleware/request"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Domain logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "statedeck: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log)
	m := metrics.New()

	deps, err := buildDependencies(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer deps.Close()

	router := newRouter(cfg, log, m, deps)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting statedeck",
			"addr", cfg.Addr,
			"environment", cfg.Environment,
			"postgres", deps.db != nil,
			"redis", deps.redis != nil,
			"kafka", deps.consumer != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if deps.consumer != nil {
		g.Go(func() error { return ignoreCanceled(deps.consumer.Run(gctx)) })
		g.Go(func() error { return ignoreCanceled(deps.ingestWorker.Run(gctx)) })
	}

	if err := g.Wait(); err != nil {
		log.Error("statedeck stopped with error", "error", err)
		return err
	}
	return nil
}

func newRouter(cfg config.Server, log *slog.Logger, m *metrics.Metrics, deps *dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientMetadata)
	r.Use(request.Logger(log))
	r.Use(m.Middleware)
	r.Use(chimw.Compress(5, "application/json", "text/csv"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := deps.Health(r.Context())
		httputil.WriteJSON(w, code, status)
	})
	r.Handle("/metrics", m.Handler())

	deps.auditHandler.Register(r)
	deps.versionsHandler.Register(r)
	deps.credentialsHandler.Register(r)

	if cfg.IsDevelopment() {
		log.Debug("routes registered", "environment", cfg.Environment)
	}
	return r
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
