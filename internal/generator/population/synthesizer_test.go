package population

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amlgen/internal/generator/models"
	"amlgen/internal/generator/random"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
)

var windowStart = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestSynthesizeProperties(t *testing.T) {
	profiles := models.DefaultProfiles()
	for _, n := range []int{1, 2, 17, 100, 500} {
		for _, seed := range []uint64{1, 2, 3} {
			cfg := DefaultConfig()
			cfg.Count = n
			users, err := Synthesize(cfg, profiles, windowStart, random.New(seed))
			require.NoError(t, err)
			require.Len(t, users, n)

			ids := map[id.UserID]bool{}
			peps := 0
			for _, u := range users {
				require.False(t, ids[u.ID], "duplicate id %s", u.ID)
				ids[u.ID] = true
				_, err := id.ParseUserID(u.ID.String())
				require.NoError(t, err)

				profile, ok := profiles[u.Occupation]
				require.True(t, ok, "unknown occupation %q", u.Occupation)
				assert.GreaterOrEqual(t, u.RiskScore, 0.0)
				assert.LessOrEqual(t, u.RiskScore, 1.0)
				assert.GreaterOrEqual(t, u.AnnualIncome, profile.IncomeMin)
				assert.LessOrEqual(t, u.AnnualIncome, profile.IncomeMax)

				if u.IsPEP {
					peps++
					assert.True(t, profile.PEPEligible, "%s is PEP but %s is not eligible", u.ID, u.Occupation)
				}

				lookback := windowStart.Sub(u.JoinedDate)
				assert.GreaterOrEqual(t, lookback, time.Duration(0))
				assert.LessOrEqual(t, lookback, time.Duration(cfg.JoinLookbackDays+1)*24*time.Hour)
				assert.NotEmpty(t, u.Name)
				assert.NotEmpty(t, u.Email)
			}
			assert.LessOrEqual(t, peps, cfg.PEPQuota)
		}
	}
}

func TestSynthesizeZeroUsers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 0
	users, err := Synthesize(cfg, models.ProfileTable{}, windowStart, random.New(1))
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestSynthesizeRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = -1
	_, err := Synthesize(cfg, models.DefaultProfiles(), windowStart, random.New(1))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))

	cfg = DefaultConfig()
	_, err = Synthesize(cfg, models.ProfileTable{}, windowStart, random.New(1))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))
}

// The quota is a soft cap driven by a running counter. With a certain coin
// the cap is reached exactly; with a coin that never lands nobody is a PEP.
func TestPEPQuotaIsASoftCap(t *testing.T) {
	allEligible := models.ProfileTable{
		models.OccupationPolitician: {BaseRisk: 0.7, IncomeMin: 600_000, IncomeMax: 1_200_000, PEPEligible: true},
	}

	cfg := DefaultConfig()
	cfg.Count = 50
	cfg.PEPQuota = 3
	cfg.PEPProbability = 1
	users, err := Synthesize(cfg, allEligible, windowStart, random.New(8))
	require.NoError(t, err)
	assert.Equal(t, 3, countPEPs(users))
	for i := range 3 {
		assert.True(t, users[i].IsPEP, "first eligible draws fill the quota")
	}

	cfg.PEPProbability = 0
	users, err = Synthesize(cfg, allEligible, windowStart, random.New(8))
	require.NoError(t, err)
	assert.Zero(t, countPEPs(users))
}

// Risk is clamped, not resampled: with a base risk at the boundary roughly
// half of all draws land exactly on it.
func TestRiskTailsPileAtBoundary(t *testing.T) {
	lowRisk := models.ProfileTable{"Zero": {BaseRisk: 0, IncomeMin: 1, IncomeMax: 2}}
	cfg := DefaultConfig()
	cfg.Count = 2000
	users, err := Synthesize(cfg, lowRisk, windowStart, random.New(21))
	require.NoError(t, err)

	atZero := 0
	for _, u := range users {
		if u.RiskScore == 0 {
			atZero++
		}
	}
	assert.InDelta(t, 0.5, float64(atZero)/float64(len(users)), 0.05)
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	a, err := Synthesize(DefaultConfig(), models.DefaultProfiles(), windowStart, random.New(77))
	require.NoError(t, err)
	b, err := Synthesize(DefaultConfig(), models.DefaultProfiles(), windowStart, random.New(77))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Synthesize(DefaultConfig(), models.DefaultProfiles(), windowStart, random.New(78))
	require.NoError(t, err)
	assert.NotEqual(t, a[0].ID, c[0].ID)
}

func countPEPs(users []models.User) int {
	n := 0
	for _, u := range users {
		if u.IsPEP {
			n++
		}
	}
	return n
}
