// Package main serves a generated dataset through a read-only lookup API.
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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	genmetrics "amlgen/internal/generator/metrics"
	"amlgen/internal/generator/service"
	"amlgen/internal/lookup/handler"
	lookupmetrics "amlgen/internal/lookup/metrics"
	lookupservice "amlgen/internal/lookup/service"
	"amlgen/internal/lookup/store"
	"amlgen/internal/platform/config"
	"amlgen/internal/platform/database"
	"amlgen/internal/platform/health"
	"amlgen/internal/platform/logger"
	"amlgen/internal/platform/tracer"
	"amlgen/pkg/platform/middleware/request"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer src.close()

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(request.LatencyMiddleware(request.NewMetrics(nil)))
	if cfg.Server.ReadTimeout > 0 {
		r.Use(request.Timeout(cfg.Server.ReadTimeout))
	}

	svc := lookupservice.NewService(src.store, log, lookupservice.WithMetrics(lookupmetrics.New(nil)))
	handler.New(svc, log).Register(r)

	h := health.New(src.info)
	for _, c := range src.checks {
		h.RegisterChecker(c)
	}
	h.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Server.Addr, "source", cfg.Server.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

type source struct {
	store  lookupservice.Store
	info   *health.DatasetInfo
	checks []health.Checker
	close  func()
}

// openSource either generates the dataset in process or reads the tables a
// previous amlgen run loaded into Postgres.
func openSource(ctx context.Context, cfg config.Config, log *slog.Logger) (*source, error) {
	switch cfg.Server.Source {
	case config.SourcePostgres:
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.Generation.DatabaseURL
		pool, err := database.New(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		return &source{
			store:  store.NewPostgres(pool.DB()),
			info:   &health.DatasetInfo{Source: config.SourcePostgres},
			checks: []health.Checker{pool},
			close: func() {
				if err := pool.Close(); err != nil {
					log.Warn("close database", "error", err)
				}
			},
		}, nil
	default:
		gen := cfg.Generation
		if !gen.SeedSet {
			gen.Seed = 1
		}
		opts := append(service.ConfigOptions(gen),
			service.WithLogger(log),
			service.WithMetrics(genmetrics.New(nil)),
			service.WithTracer(tracer.NewOTel()),
		)
		g, err := service.New(gen.Seed, opts...)
		if err != nil {
			return nil, err
		}
		ds, err := g.Run(ctx)
		if err != nil {
			return nil, err
		}
		sum := ds.Summary()
		log.Info("serving generated dataset", "seed", ds.Seed, "summary", sum)
		return &source{
			store: store.FromDataset(ds),
			info: &health.DatasetInfo{
				Seed:         ds.Seed,
				Source:       config.SourceMemory,
				Users:        sum.Users,
				Transactions: sum.Transactions,
				Alerts:       sum.Alerts,
			},
			close: func() {},
		}, nil
	}
}
