package service

import (
	"log/slog"
	"time"

	"amlgen/internal/generator/background"
	"amlgen/internal/generator/metrics"
	"amlgen/internal/generator/models"
	"amlgen/internal/generator/population"
	"amlgen/internal/generator/typology"
	"amlgen/internal/generator/window"
	"amlgen/internal/platform/config"
	"amlgen/internal/platform/tracer"
)

type Option func(*Generator)

// WithAnchor sets the end of the generation window. Runs are only
// reproducible when the anchor is fixed.
func WithAnchor(anchor time.Time) Option {
	return func(g *Generator) {
		g.anchor = anchor
	}
}

// WithWindowDays sets the window length. Non-positive values keep the default.
func WithWindowDays(days int) Option {
	return func(g *Generator) {
		if days > 0 {
			g.windowDays = days
		}
	}
}

func WithCurrency(currency string) Option {
	return func(g *Generator) {
		g.currency = currency
	}
}

func WithProfiles(profiles models.ProfileTable) Option {
	return func(g *Generator) {
		g.profiles = profiles
	}
}

func WithPopulation(cfg population.Config) Option {
	return func(g *Generator) {
		g.population = cfg
	}
}

// WithBackground sets the background graph shape. Its currency is replaced
// by the generator's.
func WithBackground(cfg background.Config) Option {
	return func(g *Generator) {
		g.background = cfg
	}
}

// WithInjectors replaces the scenario set. Injectors run in the given order
// and each needs an entry in the schedule.
func WithInjectors(injectors ...typology.Injector) Option {
	return func(g *Generator) {
		g.injectors = injectors
	}
}

func WithSchedule(schedule window.Schedule) Option {
	return func(g *Generator) {
		g.schedule = schedule
	}
}

// WithParallel runs the injectors concurrently. Output is identical to a
// sequential run with the same seed.
func WithParallel(parallel bool) Option {
	return func(g *Generator) {
		g.parallel = parallel
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(g *Generator) {
		g.tracer = t
	}
}

// ConfigOptions translates the run configuration into options. Anchor is
// only applied when set.
func ConfigOptions(cfg config.Generation) []Option {
	pop := population.DefaultConfig()
	pop.Count = cfg.Users
	pop.PEPQuota = cfg.PEPQuota

	bg := background.DefaultConfig(cfg.Currency)
	bg.Count = cfg.Transactions

	opts := []Option{
		WithCurrency(cfg.Currency),
		WithWindowDays(cfg.WindowDays),
		WithPopulation(pop),
		WithBackground(bg),
		WithParallel(cfg.Parallel),
	}
	if !cfg.Anchor.IsZero() {
		opts = append(opts, WithAnchor(cfg.Anchor))
	}
	return opts
}
