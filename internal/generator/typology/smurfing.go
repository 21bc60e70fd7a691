package typology

import (
	"fmt"

	"github.com/shopspring/decimal"

	"amlgen/internal/generator/models"
	"amlgen/internal/generator/random"
	"amlgen/internal/generator/window"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
	"amlgen/pkg/money"
)

// Smurfing models structuring: many deposits just under the reporting
// threshold, consolidated and forwarded in one transfer.
//
// Deposits fall in [span start, span end - 2d). The consolidation transfer
// goes out at span end - 2d and the alert is raised a day later.
type Smurfing struct {
	Threshold    decimal.Decimal
	Band         money.Band
	DepositCount int
}

// NewSmurfing returns the default structuring scenario: ten deposits between
// 80,000 and 95,000 against a 100,000 reporting threshold.
func NewSmurfing() *Smurfing {
	return &Smurfing{
		Threshold:    decimal.NewFromInt(100_000),
		Band:         money.NewBand(80_000, 95_000),
		DepositCount: 10,
	}
}

func (s *Smurfing) Name() string { return window.Smurfing }

func (s *Smurfing) Validate() error {
	if s.DepositCount < 1 {
		return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("smurfing needs at least one deposit, got %d", s.DepositCount))
	}
	if err := s.Band.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidConfig, "smurfing band")
	}
	if !s.Band.StrictlyBelow(s.Threshold) {
		return dErrors.New(dErrors.CodeInvalidConfig,
			fmt.Sprintf("smurfing band %s must lie strictly below the reporting threshold %s", s.Band, s.Threshold))
	}
	return nil
}

func (s *Smurfing) Inject(users []models.User, scope Scope, rng *random.Source) (Injection, error) {
	if err := s.Validate(); err != nil {
		return Injection{}, err
	}
	if err := checkScope(scope); err != nil {
		return Injection{}, err
	}
	if err := requireUsers(users, 2, "smurfing"); err != nil {
		return Injection{}, err
	}

	picked := rng.Sample(len(users), 2)
	smurf, beneficiary := users[picked[0]], users[picked[1]]

	consolidateAt := scope.Span.End.Add(-2 * window.Day)
	depositWindow := consolidateAt.Sub(scope.Span.Start)
	ids := rng.Minter()

	txns := make([]models.Transaction, 0, s.DepositCount+1)
	amounts := make([]decimal.Decimal, 0, s.DepositCount)
	for range s.DepositCount {
		amount := s.Band.At(rng.Float64())
		amounts = append(amounts, amount)
		txns = append(txns, models.Transaction{
			ID:         id.TxnID(ids.Mint(models.TxnPrefixSmurfIn, txnIDHexLen)),
			SenderID:   id.ExternalDeposit,
			ReceiverID: id.UserParty(smurf.ID),
			Amount:     amount,
			Currency:   scope.Currency,
			Timestamp:  scope.Span.Start.Add(rng.Offset(depositWindow)),
			Type:       models.TxnDeposit,
		})
	}

	txns = append(txns, models.Transaction{
		ID:         id.TxnID(ids.Mint(models.TxnPrefixSmurfOut, txnIDHexLen)),
		SenderID:   id.UserParty(smurf.ID),
		ReceiverID: id.UserParty(beneficiary.ID),
		Amount:     money.Sum(amounts...),
		Currency:   scope.Currency,
		Timestamp:  consolidateAt,
		Type:       models.TxnTransfer,
	})

	alert := newAlert(rng, smurf.ID, models.ReasonStructuring, models.SeverityHigh, consolidateAt.Add(window.Day))
	return Injection{Transactions: txns, Alerts: []models.Alert{alert}, Subject: smurf.ID}, nil
}
