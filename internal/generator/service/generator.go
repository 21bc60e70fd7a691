// Package service orchestrates a generation run.
//
// A run draws the population, the background graph and every scenario from
// independent streams of one master seed: users use stream 0, the background
// stream 1 and the i-th injector stream 2+i. Stages never share a stream, so
// the injectors can run sequentially or concurrently with identical output.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"amlgen/internal/dataset"
	"amlgen/internal/generator/background"
	"amlgen/internal/generator/metrics"
	"amlgen/internal/generator/models"
	"amlgen/internal/generator/population"
	"amlgen/internal/generator/random"
	"amlgen/internal/generator/typology"
	"amlgen/internal/generator/window"
	"amlgen/internal/platform/tracer"
	dErrors "amlgen/pkg/domain-errors"
)

const (
	defaultWindowDays = 90
	defaultCurrency   = "SEK"

	stageUsers      = "users"
	stageBackground = "background"

	streamUsers      = 0
	streamBackground = 1
	streamInjectors  = 2
)

// Generator produces one dataset per Run.
type Generator struct {
	seed       uint64
	anchor     time.Time
	windowDays int
	currency   string
	profiles   models.ProfileTable
	population population.Config
	background background.Config
	injectors  []typology.Injector
	schedule   window.Schedule
	parallel   bool

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// New builds a generator for seed and validates the whole configuration, so
// a misconfigured run fails before anything is drawn.
//
// Without WithAnchor the window ends at the start of the current UTC day,
// which keeps same-seed runs on the same day identical.
func New(seed uint64, opts ...Option) (*Generator, error) {
	g := &Generator{
		seed:       seed,
		anchor:     time.Now().UTC().Truncate(24 * time.Hour),
		windowDays: defaultWindowDays,
		currency:   defaultCurrency,
		profiles:   models.DefaultProfiles(),
		population: population.DefaultConfig(),
		background: background.DefaultConfig(defaultCurrency),
		injectors: []typology.Injector{
			typology.NewSmurfing(),
			typology.NewMuleRing(),
			typology.NewAffordability(),
			typology.NewGeoContext(),
		},
		schedule: window.DefaultSchedule(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.background.Currency = g.currency
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.tracer == nil {
		g.tracer = tracer.NewNoop()
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) validate() error {
	if g.currency == "" {
		return dErrors.New(dErrors.CodeInvalidConfig, "currency is required")
	}
	if err := g.profiles.Validate(); err != nil {
		return err
	}
	if err := g.population.Validate(); err != nil {
		return err
	}
	if err := g.background.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(g.injectors))
	for _, inj := range g.injectors {
		if seen[inj.Name()] {
			return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("injector %s configured twice", inj.Name()))
		}
		seen[inj.Name()] = true
		if _, ok := g.schedule.Span(inj.Name()); !ok {
			return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("injector %s has no scheduled span", inj.Name()))
		}
		if err := inj.Validate(); err != nil {
			return err
		}
	}
	return g.schedule.Validate(g.windowDays)
}

// Seed returns the master seed.
func (g *Generator) Seed() uint64 { return g.seed }

// Window returns the generation window runs use.
func (g *Generator) Window() window.Window { return window.New(g.anchor, g.windowDays) }

// Run generates and verifies a dataset. Any stage failure aborts the run and
// no partial dataset is returned.
func (g *Generator) Run(ctx context.Context) (ds *dataset.Dataset, err error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanRun,
		tracer.Uint64(tracer.AttrSeed, g.seed),
		tracer.Bool(tracer.AttrParallel, g.parallel),
	)
	defer func() {
		span.End(err)
		g.recordOutcome(err)
	}()

	w := g.Window()
	master := random.New(g.seed)
	g.logger.InfoContext(ctx, "generation started",
		"seed", g.seed,
		"window_start", w.Start,
		"window_end", w.End,
		"parallel", g.parallel,
	)

	out := dataset.New(g.seed, w, g.currency)

	err = g.stage(ctx, stageUsers, func(context.Context) error {
		users, err := population.Synthesize(g.population, g.profiles, w.Start, master.Stream(streamUsers))
		if err != nil {
			return err
		}
		out.Users = users
		if g.metrics != nil {
			g.metrics.ObserveUsers(len(users), out.Summary().PEPs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = g.stage(ctx, stageBackground, func(context.Context) error {
		txns, err := background.Generate(out.Users, g.background, w, master.Stream(streamBackground))
		if err != nil {
			return err
		}
		out.Append(txns, nil)
		if g.metrics != nil {
			g.metrics.ObserveTransactions(stageBackground, len(txns))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	injections, err := g.inject(ctx, out.Users, w, master)
	if err != nil {
		return nil, err
	}
	for _, inj := range injections {
		out.Append(inj.Transactions, inj.Alerts)
	}

	if err := out.Verify(); err != nil {
		g.logger.ErrorContext(ctx, "generated dataset is inconsistent", "error", err)
		return nil, err
	}
	span.AddEvent(tracer.EventVerified,
		tracer.Int(tracer.AttrUsers, len(out.Users)),
		tracer.Int(tracer.AttrTransactions, len(out.Transactions)),
		tracer.Int(tracer.AttrAlerts, len(out.Alerts)),
	)
	g.logger.InfoContext(ctx, "generation finished", "seed", g.seed, "summary", out.Summary())
	return out, nil
}

// inject runs every injector on its own stream and returns the injections in
// injector order, whatever order they finished in.
func (g *Generator) inject(ctx context.Context, users []models.User, w window.Window, master *random.Source) ([]typology.Injection, error) {
	results := make([]typology.Injection, len(g.injectors))
	run := func(ctx context.Context, i int) error {
		inj := g.injectors[i]
		span, _ := g.schedule.Span(inj.Name())
		scope := typology.Scope{Span: w.Resolve(span), Currency: g.currency}
		rng := master.Stream(uint64(streamInjectors + i))

		return g.stage(ctx, inj.Name(), func(ctx context.Context) error {
			g.logger.InfoContext(ctx, "injecting pattern", "injector", inj.Name(), "span", span.String())
			out, err := inj.Inject(users, scope, rng)
			if err != nil {
				return err
			}
			results[i] = out
			g.observeInjection(ctx, inj.Name(), out)
			return nil
		})
	}

	if !g.parallel {
		for i := range g.injectors {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	group, gctx := errgroup.WithContext(ctx)
	for i := range g.injectors {
		group.Go(func() error { return run(gctx, i) })
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// stage runs fn inside a span, timing it. Errors keep their domain code and
// gain the stage name.
func (g *Generator) stage(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := g.tracer.Start(ctx, tracer.SpanStage, tracer.String(tracer.AttrStage, name))
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		span.End(err)
		if g.metrics != nil {
			g.metrics.ObserveStageLatency(name, elapsed)
		}
		g.logger.DebugContext(ctx, "stage finished", "stage", name, "elapsed", elapsed, "failed", err != nil)
	}()

	if err := fn(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("%s: %s", name, err))
	}
	return nil
}

func (g *Generator) observeInjection(ctx context.Context, name string, out typology.Injection) {
	g.logger.InfoContext(ctx, "pattern injected",
		"injector", name,
		"subject", out.Subject,
		"transactions", len(out.Transactions),
		"alerts", len(out.Alerts),
	)
	if g.metrics == nil {
		return
	}
	g.metrics.ObserveTransactions(name, len(out.Transactions))
	for _, a := range out.Alerts {
		g.metrics.IncrementAlerts(name, string(a.Severity))
	}
}

func (g *Generator) recordOutcome(err error) {
	if g.metrics == nil {
		return
	}
	if err == nil {
		g.metrics.IncrementRuns("ok")
		return
	}
	g.metrics.IncrementRuns(string(dErrors.CodeOf(err)))
}
