package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"amlgen/internal/generator/window"
	dErrors "amlgen/pkg/domain-errors"
	"amlgen/pkg/validation"
)

// Generation captures one generator run.
type Generation struct {
	// Seed is only meaningful when SeedSet; otherwise the CLI derives one.
	Seed         uint64
	SeedSet      bool
	Users        int    `validate:"min=2,max=1000000"`
	Transactions int    `validate:"min=1,max=50000000"`
	WindowDays   int    `validate:"min=1,max=3650"`
	PEPQuota     int    `validate:"min=0"`
	Currency     string `validate:"required,len=3,uppercase"`
	OutputDir    string
	// Anchor is the end of the window. Zero means the start of today, UTC.
	Anchor   time.Time
	Parallel bool

	DatabaseURL      string
	KafkaBrokers     string
	KafkaTopicPrefix string
}

// Server captures the lookup API.
type Server struct {
	Addr string `validate:"required"`
	// Source is where the API reads the dataset: a fresh in-memory run or
	// the Postgres tables.
	Source          string        `validate:"oneof=memory postgres"`
	ReadTimeout     time.Duration `validate:"min=0"`
	ShutdownTimeout time.Duration `validate:"min=0"`
}

type Config struct {
	Generation Generation
	Server     Server
	LogLevel   string `validate:"oneof=debug info warn error"`
}

// Source names for Server.Source.
const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
)

// Default returns the configuration of the reference dataset.
func Default() Config {
	return Config{
		Generation: Generation{
			Users:            100,
			Transactions:     1000,
			WindowDays:       90,
			PEPQuota:         5,
			Currency:         "SEK",
			OutputDir:        "out",
			KafkaTopicPrefix: "amlgen.",
		},
		Server: Server{
			Addr:            ":8080",
			Source:          SourceMemory,
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		LogLevel: "info",
	}
}

// FromEnv loads an optional .env file, then overlays environment variables on
// Default. The result is not validated; call Validate after applying flags.
func FromEnv() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	env := envReader{lookup: lookup}
	g := &cfg.Generation

	if v, ok := lookup("AMLGEN_SEED"); ok && strings.TrimSpace(v) != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return cfg, dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("AMLGEN_SEED: %v", err))
		}
		g.Seed, g.SeedSet = seed, true
	}
	env.int("AMLGEN_USERS", &g.Users)
	env.int("AMLGEN_TRANSACTIONS", &g.Transactions)
	env.int("AMLGEN_WINDOW_DAYS", &g.WindowDays)
	env.int("AMLGEN_PEP_QUOTA", &g.PEPQuota)
	env.string("AMLGEN_CURRENCY", &g.Currency)
	env.string("AMLGEN_OUTPUT_DIR", &g.OutputDir)
	env.bool("AMLGEN_PARALLEL", &g.Parallel)
	env.string("DATABASE_URL", &g.DatabaseURL)
	env.string("KAFKA_BROKERS", &g.KafkaBrokers)
	env.string("AMLGEN_KAFKA_TOPIC_PREFIX", &g.KafkaTopicPrefix)
	if v, ok := lookup("AMLGEN_ANCHOR"); ok && strings.TrimSpace(v) != "" {
		anchor, err := ParseAnchor(v)
		if err != nil {
			return cfg, dErrors.New(dErrors.CodeInvalidConfig, "AMLGEN_ANCHOR: "+err.Error())
		}
		g.Anchor = anchor
	}

	env.string("AMLGEN_ADDR", &cfg.Server.Addr)
	env.string("AMLGEN_SOURCE", &cfg.Server.Source)
	env.duration("AMLGEN_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	env.duration("AMLGEN_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	env.string("LOG_LEVEL", &cfg.LogLevel)

	return cfg, env.err
}

// ParseAnchor accepts an RFC 3339 timestamp or a plain date.
func ParseAnchor(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("anchor %q is neither RFC 3339 nor YYYY-MM-DD", s))
}

// Validate checks field ranges and that the default scenario schedule fits
// the window.
func (c Config) Validate() error {
	c.Normalize()
	if err := validation.Validate(c); err != nil {
		return dErrors.New(dErrors.CodeInvalidConfig, err.Error())
	}
	if c.Generation.PEPQuota > c.Generation.Users {
		return dErrors.New(dErrors.CodeInvalidConfig,
			fmt.Sprintf("pep quota %d exceeds population %d", c.Generation.PEPQuota, c.Generation.Users))
	}
	if c.Server.Source == SourcePostgres && c.Generation.DatabaseURL == "" {
		return dErrors.New(dErrors.CodeInvalidConfig, "postgres source requires DATABASE_URL")
	}
	return window.DefaultSchedule().Validate(c.Generation.WindowDays)
}

// Normalize trims values and upper-cases the currency.
func (c *Config) Normalize() {
	c.Generation.Currency = strings.ToUpper(strings.TrimSpace(c.Generation.Currency))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Server.Source = strings.ToLower(strings.TrimSpace(c.Server.Source))
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("%s: %v", key, err))
	}
}

func (e *envReader) string(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}
