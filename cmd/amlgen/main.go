// Package main generates a seeded AML ground-truth dataset and writes it to
// every configured sink.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amlgen/internal/dataset"
	"amlgen/internal/dataset/sink"
	genmetrics "amlgen/internal/generator/metrics"
	"amlgen/internal/generator/service"
	"amlgen/internal/platform/config"
	"amlgen/internal/platform/database"
	"amlgen/internal/platform/kafka"
	"amlgen/internal/platform/kafka/producer"
	"amlgen/internal/platform/logger"
	"amlgen/internal/platform/tracer"
)

const preflightTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "amlgen:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err := parseFlags(&cfg, os.Args[1:]); err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel)
	gen := &cfg.Generation
	if !gen.SeedSet {
		gen.Seed = uint64(time.Now().UnixNano())
		gen.SeedSet = true
		log.Info("no seed given, derived one from the clock", "seed", gen.Seed)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, cleanup, err := buildSinks(ctx, *gen, log)
	defer cleanup()
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		log.Warn("no sink configured, the dataset will only be summarised")
	}

	m := genmetrics.New(nil)
	t := tracer.NewOTel()
	opts := append(service.ConfigOptions(*gen),
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithTracer(t),
	)
	g, err := service.New(gen.Seed, opts...)
	if err != nil {
		return err
	}

	w := g.Window()
	log.Info("generating dataset",
		"seed", g.Seed(),
		"users", gen.Users,
		"transactions", gen.Transactions,
		"window_start", w.Start,
		"window_end", w.End,
		"parallel", gen.Parallel,
	)

	ds, err := g.Run(ctx)
	if err != nil {
		return err
	}

	writer := dataset.NewWriter(sinks,
		dataset.WithLogger(log),
		dataset.WithMetrics(m),
		dataset.WithTracer(t),
	)
	if err := writer.Write(ctx, ds); err != nil {
		return err
	}

	log.Info("dataset written", "seed", ds.Seed, "summary", ds.Summary())
	return nil
}

// parseFlags overlays command-line flags on the environment configuration.
func parseFlags(cfg *config.Config, args []string) error {
	gen := &cfg.Generation
	fs := flag.NewFlagSet("amlgen", flag.ContinueOnError)

	seed := fs.Uint64("seed", gen.Seed, "Master seed. Derived from the clock if unset.")
	fs.IntVar(&gen.Users, "users", gen.Users, "Number of users")
	fs.IntVar(&gen.Transactions, "transactions", gen.Transactions, "Number of background transactions")
	fs.IntVar(&gen.WindowDays, "window-days", gen.WindowDays, "Length of the generation window in days")
	fs.IntVar(&gen.PEPQuota, "pep-quota", gen.PEPQuota, "Maximum number of politically exposed persons")
	fs.StringVar(&gen.Currency, "currency", gen.Currency, "ISO 4217 currency code")
	fs.StringVar(&gen.OutputDir, "out", gen.OutputDir, "CSV output directory. Empty disables the CSV sink.")
	anchor := fs.String("anchor", "", "Window end, RFC 3339 or YYYY-MM-DD. Defaults to the start of today, UTC.")
	fs.BoolVar(&gen.Parallel, "parallel", gen.Parallel, "Run the scenario injectors concurrently")
	fs.StringVar(&gen.DatabaseURL, "database-url", gen.DatabaseURL, "Postgres URL. Empty disables the Postgres sink.")
	fs.StringVar(&gen.KafkaBrokers, "kafka-brokers", gen.KafkaBrokers, "Comma-separated Kafka brokers. Empty disables the Kafka sink.")
	fs.StringVar(&gen.KafkaTopicPrefix, "topic-prefix", gen.KafkaTopicPrefix, "Prefix for the per-table Kafka topics")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			gen.Seed = *seed
			gen.SeedSet = true
		}
	})
	if *anchor != "" {
		t, err := config.ParseAnchor(*anchor)
		if err != nil {
			return fmt.Errorf("-anchor: %w", err)
		}
		gen.Anchor = t
	}
	return nil
}

// buildSinks opens every configured sink and checks its backend is reachable
// before any generation work starts. The returned cleanup is always safe to
// call.
func buildSinks(ctx context.Context, gen config.Generation, log *slog.Logger) ([]dataset.Sink, func(), error) {
	var (
		sinks   []dataset.Sink
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if gen.OutputDir != "" {
		sinks = append(sinks, sink.NewCSV(gen.OutputDir))
	}

	if gen.DatabaseURL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = gen.DatabaseURL
		pool, err := database.New(ctx, dbCfg)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() {
			if err := pool.Close(); err != nil {
				log.Warn("close database", "error", err)
			}
		})
		if err := preflight(ctx, pool.Name(), pool.Health); err != nil {
			return nil, cleanup, err
		}
		sinks = append(sinks, sink.NewPostgres(pool))
	}

	if gen.KafkaBrokers != "" {
		if err := preflight(ctx, "kafka", kafka.NewHealthChecker(gen.KafkaBrokers).Health); err != nil {
			return nil, cleanup, err
		}
		pCfg := kafka.DefaultProducerConfig()
		pCfg.Brokers = gen.KafkaBrokers
		pCfg.TopicPrefix = gen.KafkaTopicPrefix
		p, err := producer.New(pCfg, log)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() {
			if err := p.Close(); err != nil {
				log.Warn("close kafka producer", "error", err)
			}
		})
		sinks = append(sinks, sink.NewKafka(p, pCfg.TopicPrefix))
	}

	return sinks, cleanup, nil
}

func preflight(ctx context.Context, name string, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, preflightTimeout)
	defer cancel()
	if err := check(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", name, err)
	}
	return nil
}
