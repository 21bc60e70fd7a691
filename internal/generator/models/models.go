package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "amlgen/pkg/domain"
)

// DateLayout formats joined dates.
const DateLayout = "2006-01-02"

// User is a synthesized account holder. Users are created once at the start
// of a run and never change afterwards.
type User struct {
	ID           id.UserID
	Name         string
	Occupation   Occupation
	Email        string
	Phone        string
	Address      string
	AnnualIncome int64
	RiskScore    float64
	JoinedDate   time.Time
	IsPEP        bool
}

// TxnType tags how money moved.
type TxnType string

const (
	TxnTransfer TxnType = "TRANSFER"
	TxnDeposit  TxnType = "DEPOSIT"
	TxnWireIn   TxnType = "WIRE_IN"
	TxnWireOut  TxnType = "WIRE_OUT"
	TxnPurchase TxnType = "PURCHASE"
)

func (t TxnType) IsValid() bool {
	switch t {
	case TxnTransfer, TxnDeposit, TxnWireIn, TxnWireOut, TxnPurchase:
		return true
	}
	return false
}

// Transaction ID prefixes, one per producer.
const (
	TxnPrefixBackground = "TX-"
	TxnPrefixSmurfIn    = "TX-SMURF-IN-"
	TxnPrefixSmurfOut   = "TX-SMURF-OUT-"
	TxnPrefixMuleIn     = "TX-MULE-IN-"
	TxnPrefixMuleOut    = "TX-MULE-OUT-"
	TxnPrefixFPRich     = "TX-FP-RICH-"
	TxnPrefixFPGeo      = "TX-FP-GEO-"
)

// Transaction is a single movement between two parties.
type Transaction struct {
	ID         id.TxnID
	SenderID   id.Party
	ReceiverID id.Party
	Amount     decimal.Decimal
	Currency   string
	Timestamp  time.Time
	Type       TxnType
}

// Touches reports whether user is the sender or the receiver.
func (t Transaction) Touches(user id.UserID) bool {
	p := id.UserParty(user)
	return t.SenderID == p || t.ReceiverID == p
}

// Severity ranks alerts.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// AlertStatus is the triage state of an alert. Generated alerts are always
// new; the other states are set downstream by whoever works the queue.
type AlertStatus string

const (
	AlertStatusNew      AlertStatus = "new"
	AlertStatusInReview AlertStatus = "in_review"
	AlertStatusClosed   AlertStatus = "closed"
)

func (s AlertStatus) IsValid() bool {
	return s == AlertStatusNew || s == AlertStatusInReview || s == AlertStatusClosed
}

// Typology names the scenario an alert was generated for.
type Typology string

const (
	TypologyStructuring   Typology = "structuring"
	TypologyMuleRing      Typology = "mule_ring"
	TypologyAffordability Typology = "fp_affordability"
	TypologyGeoContext    Typology = "fp_geo_context"
)

var typologyPrefixes = map[Typology][]string{
	TypologyStructuring:   {TxnPrefixSmurfIn, TxnPrefixSmurfOut},
	TypologyMuleRing:      {TxnPrefixMuleIn, TxnPrefixMuleOut},
	TypologyAffordability: {TxnPrefixFPRich},
	TypologyGeoContext:    {TxnPrefixFPGeo},
}

// TxnPrefixes returns the id prefixes of the transactions a scenario emits.
func (t Typology) TxnPrefixes() []string {
	return typologyPrefixes[t]
}

// TriggerReason is the canonical alert text of each injector.
type TriggerReason string

const (
	ReasonStructuring    TriggerReason = "Structuring: multiple deposits just below the reporting threshold"
	ReasonRapidMovement  TriggerReason = "Rapid movement: funds transferred immediately after receipt"
	ReasonHighValue      TriggerReason = "High-value transaction: single transaction above 100,000"
	ReasonGeographicRisk TriggerReason = "Geographic risk: large transfer to a high-risk jurisdiction"
)

var reasonTypology = map[TriggerReason]Typology{
	ReasonStructuring:    TypologyStructuring,
	ReasonRapidMovement:  TypologyMuleRing,
	ReasonHighValue:      TypologyAffordability,
	ReasonGeographicRisk: TypologyGeoContext,
}

// Typology returns the scenario a canonical reason belongs to.
func (r TriggerReason) Typology() (Typology, bool) {
	t, ok := reasonTypology[r]
	return t, ok
}

// Alert flags a user for triage.
type Alert struct {
	ID        id.AlertID
	UserID    id.UserID
	Reason    TriggerReason
	Status    AlertStatus
	CreatedAt time.Time
	Severity  Severity
}
