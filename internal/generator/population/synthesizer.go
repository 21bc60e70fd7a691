// Package population synthesizes the user base every other stage draws from.
package population

import (
	"fmt"
	"time"

	"amlgen/internal/generator/models"
	"amlgen/internal/generator/random"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
)

const (
	defaultCount            = 100
	defaultPEPQuota         = 5
	defaultPEPProbability   = 0.8
	defaultRiskStdDev       = 0.1
	defaultJoinLookbackDays = 1000

	userIDHexLen = 8
)

// Config shapes the synthesized population.
type Config struct {
	Count int
	// PEPQuota caps PEP users. It is a soft cap: eligible users only become PEPs
	// with PEPProbability while the running count is below the quota.
	PEPQuota         int
	PEPProbability   float64
	RiskStdDev       float64
	JoinLookbackDays int
}

// DefaultConfig returns the source population shape: 100 users, at most 5 PEPs.
func DefaultConfig() Config {
	return Config{
		Count:            defaultCount,
		PEPQuota:         defaultPEPQuota,
		PEPProbability:   defaultPEPProbability,
		RiskStdDev:       defaultRiskStdDev,
		JoinLookbackDays: defaultJoinLookbackDays,
	}
}

// Validate rejects configurations that cannot be sampled.
func (c Config) Validate() error {
	switch {
	case c.Count < 0:
		return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("user count must not be negative, got %d", c.Count))
	case c.PEPQuota < 0:
		return dErrors.New(dErrors.CodeInvalidConfig, "PEP quota must not be negative")
	case c.PEPProbability < 0 || c.PEPProbability > 1:
		return dErrors.New(dErrors.CodeInvalidConfig, "PEP probability must be within [0,1]")
	case c.RiskStdDev < 0:
		return dErrors.New(dErrors.CodeInvalidConfig, "risk standard deviation must not be negative")
	case c.JoinLookbackDays < 0:
		return dErrors.New(dErrors.CodeInvalidConfig, "join lookback must not be negative")
	}
	return nil
}

// Synthesize draws cfg.Count users from profiles. Users joined up to
// cfg.JoinLookbackDays before windowStart. Count 0 yields an empty slice.
func Synthesize(cfg Config, profiles models.ProfileTable, windowStart time.Time, rng *random.Source) ([]models.User, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, cfg.Count)
	if cfg.Count == 0 {
		return users, nil
	}
	if err := profiles.Validate(); err != nil {
		return nil, err
	}

	occupations := profiles.Occupations()
	ids := rng.Minter()
	faker := rng.Faker()
	startDay := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, time.UTC)
	peps := 0

	for range cfg.Count {
		occupation := occupations[rng.IntN(len(occupations))]
		profile := profiles[occupation]

		isPEP := false
		if profile.PEPEligible && peps < cfg.PEPQuota && rng.Chance(cfg.PEPProbability) {
			isPEP = true
			peps++
		}

		users = append(users, models.User{
			ID:           id.UserID(ids.Mint(id.UserIDPrefix, userIDHexLen)),
			Name:         faker.Name(),
			Occupation:   occupation,
			Email:        faker.Email(),
			Phone:        faker.Phone(),
			Address:      fmt.Sprintf("%s, %s %s", faker.Street(), faker.Zip(), faker.City()),
			AnnualIncome: rng.Between(profile.IncomeMin, profile.IncomeMax),
			RiskScore:    clamp01(rng.Normal(profile.BaseRisk, cfg.RiskStdDev)),
			JoinedDate:   startDay.AddDate(0, 0, -rng.IntN(cfg.JoinLookbackDays+1)),
			IsPEP:        isPEP,
		})
	}
	return users, nil
}

// clamp01 pins x to [0,1]. Tails pile up at the bounds instead of being redrawn.
func clamp01(x float64) float64 {
	return min(1, max(0, x))
}
