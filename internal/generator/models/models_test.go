package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
)

func TestDefaultProfilesAreValid(t *testing.T) {
	table := DefaultProfiles()
	require.NoError(t, table.Validate())
	assert.Len(t, table.Occupations(), 11)

	eligible := 0
	for _, p := range table {
		if p.PEPEligible {
			eligible++
		}
	}
	assert.Equal(t, 4, eligible)
	assert.Contains(t, table, OccupationImporter)
}

func TestOccupationsOrderIsStable(t *testing.T) {
	table := DefaultProfiles()
	first := table.Occupations()
	for range 20 {
		assert.Equal(t, first, table.Occupations())
	}
}

func TestProfileTableValidate(t *testing.T) {
	cases := map[string]ProfileTable{
		"empty":          {},
		"risk above one": {"X": {BaseRisk: 1.2, IncomeMin: 1, IncomeMax: 1}},
		"inverted range": {"X": {BaseRisk: 0.2, IncomeMin: 10, IncomeMax: 1}},
		"negative floor": {"X": {BaseRisk: 0.2, IncomeMin: -1, IncomeMax: 1}},
		"zero floor":     {"X": {BaseRisk: 0.2, IncomeMin: 0, IncomeMax: 1}},
	}
	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, dErrors.HasCode(table.Validate(), dErrors.CodeInvalidConfig))
		})
	}
}

func TestDefaultIncomesArePositive(t *testing.T) {
	for occ, p := range DefaultProfiles() {
		assert.GreaterOrEqual(t, p.IncomeMin, int64(1), occ)
	}
}

func TestReasonsMapToTypologies(t *testing.T) {
	for reason, want := range map[TriggerReason]Typology{
		ReasonStructuring:    TypologyStructuring,
		ReasonRapidMovement:  TypologyMuleRing,
		ReasonHighValue:      TypologyAffordability,
		ReasonGeographicRisk: TypologyGeoContext,
	} {
		got, ok := reason.Typology()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := TriggerReason("made up").Typology()
	assert.False(t, ok)
}

func TestTransactionTouches(t *testing.T) {
	u := id.NewUserID("0000000A")
	txn := Transaction{SenderID: id.ExternalDeposit, ReceiverID: id.UserParty(u)}
	assert.True(t, txn.Touches(u))
	assert.False(t, txn.Touches(id.NewUserID("0000000B")))
}

func TestTypologyPrefixes(t *testing.T) {
	assert.Equal(t, []string{TxnPrefixSmurfIn, TxnPrefixSmurfOut}, TypologyStructuring.TxnPrefixes())
	assert.Equal(t, []string{TxnPrefixFPGeo}, TypologyGeoContext.TxnPrefixes())
	assert.Empty(t, Typology("unknown").TxnPrefixes())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, AlertStatusNew.IsValid())
	assert.True(t, AlertStatusClosed.IsValid())
	assert.False(t, AlertStatus("NEW").IsValid())
	assert.True(t, SeverityHigh.IsValid())
	assert.False(t, Severity("critical").IsValid())
	assert.True(t, TxnWireOut.IsValid())
	assert.False(t, TxnType("REFUND").IsValid())
}
