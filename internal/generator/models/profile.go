package models

import (
	"fmt"
	"sort"

	dErrors "amlgen/pkg/domain-errors"
)

// Occupation keys the profile table.
type Occupation string

// Occupations of the default table. Names are Swedish, as in the source population.
const (
	OccupationStudent        Occupation = "Student"
	OccupationTeacher        Occupation = "Lärare"
	OccupationNurse          Occupation = "Sjuksköterska"
	OccupationDeveloper      Occupation = "Mjukvaruutvecklare"
	OccupationImporter       Occupation = "Importör"
	OccupationUnemployed     Occupation = "Arbetslös"
	OccupationBusinessOwner  Occupation = "Företagare"
	OccupationPolitician     Occupation = "Politiker"
	OccupationDiplomat       Occupation = "Diplomat"
	OccupationJudge          Occupation = "Domare"
	OccupationSeniorOfficial Occupation = "Högre tjänsteman"
)

// Profile is the risk and income shape of an occupation.
type Profile struct {
	BaseRisk float64

	// Incomes are positive, so IncomeMin is at least 1.
	IncomeMin   int64
	IncomeMax   int64
	PEPEligible bool
}

// ProfileTable maps occupations to profiles.
type ProfileTable map[Occupation]Profile

// DefaultProfiles returns the built-in occupation table.
func DefaultProfiles() ProfileTable {
	return ProfileTable{
		OccupationStudent:       {BaseRisk: 0.1, IncomeMin: 1, IncomeMax: 200_000},
		OccupationTeacher:       {BaseRisk: 0.2, IncomeMin: 400_000, IncomeMax: 700_000},
		OccupationNurse:         {BaseRisk: 0.2, IncomeMin: 600_000, IncomeMax: 900_000},
		OccupationDeveloper:     {BaseRisk: 0.3, IncomeMin: 800_000, IncomeMax: 1_500_000},
		OccupationImporter:      {BaseRisk: 0.6, IncomeMin: 500_000, IncomeMax: 2_000_000},
		OccupationUnemployed:    {BaseRisk: 0.4, IncomeMin: 1, IncomeMax: 100_000},
		OccupationBusinessOwner: {BaseRisk: 0.5, IncomeMin: 1_000_000, IncomeMax: 5_000_000},

		OccupationPolitician:     {BaseRisk: 0.7, IncomeMin: 600_000, IncomeMax: 1_200_000, PEPEligible: true},
		OccupationDiplomat:       {BaseRisk: 0.6, IncomeMin: 700_000, IncomeMax: 1_400_000, PEPEligible: true},
		OccupationJudge:          {BaseRisk: 0.5, IncomeMin: 800_000, IncomeMax: 1_500_000, PEPEligible: true},
		OccupationSeniorOfficial: {BaseRisk: 0.6, IncomeMin: 900_000, IncomeMax: 1_800_000, PEPEligible: true},
	}
}

// Occupations returns the table keys in a stable order. Map iteration order
// is random, so sampling must go through this to stay reproducible.
func (t ProfileTable) Occupations() []Occupation {
	keys := make([]Occupation, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Validate checks every profile is internally consistent.
func (t ProfileTable) Validate() error {
	if len(t) == 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "profile table is empty")
	}
	for _, occ := range t.Occupations() {
		p := t[occ]
		if occ == "" {
			return dErrors.New(dErrors.CodeInvalidConfig, "occupation name is empty")
		}
		if p.BaseRisk < 0 || p.BaseRisk > 1 {
			return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("%s: base risk %v outside [0,1]", occ, p.BaseRisk))
		}
		if p.IncomeMin < 1 || p.IncomeMax < p.IncomeMin {
			return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("%s: invalid income range %d-%d", occ, p.IncomeMin, p.IncomeMax))
		}
	}
	return nil
}
