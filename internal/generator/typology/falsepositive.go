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

// AffordabilityThreshold is the share of annual income above which triage
// considers a single purchase unaffordable.
var AffordabilityThreshold = decimal.RequireFromString("0.20")

// Affordability is a false positive: a wealthy user makes a large purchase
// that is well within their means.
type Affordability struct {
	IncomeFloor int64
	// Fraction of annual income spent; kept below AffordabilityThreshold.
	Fraction decimal.Decimal
}

// NewAffordability returns the default scenario: 15% of income, for a user
// earning above 1,500,000.
func NewAffordability() *Affordability {
	return &Affordability{
		IncomeFloor: 1_500_000,
		Fraction:    decimal.RequireFromString("0.15"),
	}
}

func (a *Affordability) Name() string { return window.Affordability }

func (a *Affordability) Validate() error {
	if a.IncomeFloor < 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, "affordability income floor must not be negative")
	}
	if !a.Fraction.IsPositive() || !a.Fraction.LessThan(AffordabilityThreshold) {
		return dErrors.New(dErrors.CodeInvalidConfig,
			fmt.Sprintf("affordability fraction must be within (0, %s), got %s", AffordabilityThreshold, a.Fraction))
	}
	return nil
}

func (a *Affordability) Inject(users []models.User, scope Scope, rng *random.Source) (Injection, error) {
	if err := a.Validate(); err != nil {
		return Injection{}, err
	}
	if err := checkScope(scope); err != nil {
		return Injection{}, err
	}
	user, err := pick(users, rng, func(u models.User) bool { return u.AnnualIncome > a.IncomeFloor },
		fmt.Sprintf("no user earns more than %d", a.IncomeFloor))
	if err != nil {
		return Injection{}, err
	}

	txn := models.Transaction{
		ID:         id.TxnID(rng.Minter().Mint(models.TxnPrefixFPRich, txnIDHexLen)),
		SenderID:   id.UserParty(user.ID),
		ReceiverID: id.ExternalMerchantLuxury,
		Amount:     money.FractionOf(user.AnnualIncome, a.Fraction),
		Currency:   scope.Currency,
		Timestamp:  scope.Span.Start.Add(rng.Offset(scope.Span.Duration() - window.Day)),
		Type:       models.TxnPurchase,
	}
	alert := newAlert(rng, user.ID, models.ReasonHighValue, models.SeverityMedium, txn.Timestamp.Add(window.Day))
	return Injection{Transactions: []models.Transaction{txn}, Alerts: []models.Alert{alert}, Subject: user.ID}, nil
}

// GeoContext is a false positive: an importer wires a supplier in a high-risk
// jurisdiction, which their occupation explains.
type GeoContext struct {
	Occupation models.Occupation
	Band       money.Band
}

// NewGeoContext returns the default scenario: an importer wiring between
// 200,000 and 500,000.
func NewGeoContext() *GeoContext {
	return &GeoContext{
		Occupation: models.OccupationImporter,
		Band:       money.NewBand(200_000, 500_000),
	}
}

func (g *GeoContext) Name() string { return window.GeoContext }

func (g *GeoContext) Validate() error {
	if g.Occupation == "" {
		return dErrors.New(dErrors.CodeInvalidConfig, "geographic context occupation is required")
	}
	if err := g.Band.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidConfig, "geographic context band")
	}
	return nil
}

func (g *GeoContext) Inject(users []models.User, scope Scope, rng *random.Source) (Injection, error) {
	if err := g.Validate(); err != nil {
		return Injection{}, err
	}
	if err := checkScope(scope); err != nil {
		return Injection{}, err
	}
	user, err := pick(users, rng, func(u models.User) bool { return u.Occupation == g.Occupation },
		fmt.Sprintf("no user works as %s", g.Occupation))
	if err != nil {
		return Injection{}, err
	}

	txn := models.Transaction{
		ID:         id.TxnID(rng.Minter().Mint(models.TxnPrefixFPGeo, txnIDHexLen)),
		SenderID:   id.UserParty(user.ID),
		ReceiverID: id.ExternalSupplierHighGeo,
		Amount:     g.Band.At(rng.Float64()),
		Currency:   scope.Currency,
		Timestamp:  scope.Span.Start.Add(rng.Offset(scope.Span.Duration() - window.Day)),
		Type:       models.TxnWireOut,
	}
	alert := newAlert(rng, user.ID, models.ReasonGeographicRisk, models.SeverityHigh, txn.Timestamp.Add(window.Day))
	return Injection{Transactions: []models.Transaction{txn}, Alerts: []models.Alert{alert}, Subject: user.ID}, nil
}

// pick draws uniformly among the users matching eligible.
func pick(users []models.User, rng *random.Source, eligible func(models.User) bool, none string) (models.User, error) {
	var matches []models.User
	for _, u := range users {
		if eligible(u) {
			matches = append(matches, u)
		}
	}
	if len(matches) == 0 {
		return models.User{}, dErrors.New(dErrors.CodeNoEligibleUser, none)
	}
	return matches[rng.IntN(len(matches))], nil
}
