package typology

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"amlgen/internal/generator/models"
	"amlgen/internal/generator/random"
	"amlgen/internal/generator/window"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
	"amlgen/pkg/money"
)

// ForwardDelay separates a mule's inbound wire from its forward transfer.
const ForwardDelay = 2 * time.Hour

// MuleRing models hub-and-spoke layering: each mule receives an external wire
// and forwards all but its cut to a common controller.
//
// Inbound wires fall in [span start, span end - 1d). Each forward follows its
// wire by ForwardDelay and each mule is alerted a day after its wire.
type MuleRing struct {
	MuleCount int
	// Retention is the fraction each mule keeps.
	Retention decimal.Decimal
	Band      money.Band
}

// NewMuleRing returns the default ring: five mules keeping 5% of wires
// between 150,000 and 250,000.
func NewMuleRing() *MuleRing {
	return &MuleRing{
		MuleCount: 5,
		Retention: decimal.RequireFromString("0.05"),
		Band:      money.NewBand(150_000, 250_000),
	}
}

func (m *MuleRing) Name() string { return window.MuleRing }

func (m *MuleRing) Validate() error {
	if m.MuleCount < 1 {
		return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("mule ring needs at least one mule, got %d", m.MuleCount))
	}
	if m.Retention.IsNegative() || !m.Retention.LessThan(decimal.NewFromInt(1)) {
		return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("mule retention must be within [0,1), got %s", m.Retention))
	}
	if err := m.Band.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidConfig, "mule ring band")
	}
	return nil
}

// Forward returns the amount a mule passes on for an inbound wire. It is
// exact: inbound × (1 - retention) with no rounding.
func (m *MuleRing) Forward(inbound decimal.Decimal) decimal.Decimal {
	return inbound.Mul(decimal.NewFromInt(1).Sub(m.Retention))
}

func (m *MuleRing) Inject(users []models.User, scope Scope, rng *random.Source) (Injection, error) {
	if err := m.Validate(); err != nil {
		return Injection{}, err
	}
	if err := checkScope(scope); err != nil {
		return Injection{}, err
	}
	if err := requireUsers(users, m.MuleCount+1, "mule ring"); err != nil {
		return Injection{}, err
	}

	picked := rng.Sample(len(users), m.MuleCount+1)
	controller := users[picked[0]]

	inboundWindow := scope.Span.Duration() - window.Day
	ids := rng.Minter()
	txns := make([]models.Transaction, 0, 2*m.MuleCount)
	alerts := make([]models.Alert, 0, m.MuleCount)

	for _, idx := range picked[1:] {
		mule := users[idx]
		inbound := models.Transaction{
			ID:         id.TxnID(ids.Mint(models.TxnPrefixMuleIn, txnIDHexLen)),
			SenderID:   id.ExternalWire,
			ReceiverID: id.UserParty(mule.ID),
			Amount:     m.Band.At(rng.Float64()),
			Currency:   scope.Currency,
			Timestamp:  scope.Span.Start.Add(rng.Offset(inboundWindow)),
			Type:       models.TxnWireIn,
		}
		forward := models.Transaction{
			ID:         id.TxnID(ids.Mint(models.TxnPrefixMuleOut, txnIDHexLen)),
			SenderID:   id.UserParty(mule.ID),
			ReceiverID: id.UserParty(controller.ID),
			Amount:     m.Forward(inbound.Amount),
			Currency:   scope.Currency,
			Timestamp:  inbound.Timestamp.Add(ForwardDelay),
			Type:       models.TxnTransfer,
		}
		txns = append(txns, inbound, forward)
		alerts = append(alerts, newAlert(rng, mule.ID, models.ReasonRapidMovement, models.SeverityMedium, inbound.Timestamp.Add(window.Day)))
	}

	return Injection{Transactions: txns, Alerts: alerts, Subject: controller.ID}, nil
}
