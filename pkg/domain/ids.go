// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "amlgen/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a TxnID where a UserID is expected.
type (
	UserID  string
	TxnID   string
	AlertID string
)

// UserIDPrefix starts every generated user id ("U-" followed by 8 upper-case hex digits).
const UserIDPrefix = "U-"

var userIDPattern = regexp.MustCompile(`^U-[0-9A-F]{8}$`)

// NewUserID builds a user id from its hex suffix.
func NewUserID(hex string) UserID {
	return UserID(UserIDPrefix + strings.ToUpper(hex))
}

// Parse functions - use at trust boundaries (handlers, stored rows).

func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}
	if !userIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid user ID format")
	}
	return UserID(s), nil
}

func ParseTxnID(s string) (TxnID, error) {
	if !strings.HasPrefix(s, "TX-") || len(s) <= len("TX-") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid transaction ID format")
	}
	return TxnID(s), nil
}

func ParseAlertID(s string) (AlertID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "alert ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid alert ID format")
	}
	return AlertID(id.String()), nil
}

func (id UserID) String() string  { return string(id) }
func (id TxnID) String() string   { return string(id) }
func (id AlertID) String() string { return string(id) }

func (id UserID) IsNil() bool  { return id == "" }
func (id TxnID) IsNil() bool   { return id == "" }
func (id AlertID) IsNil() bool { return id == "" }

// Party is one end of a transaction: a real user or an external-entity sentinel.
type Party string

// External-entity sentinels. They never match the user id format.
const (
	ExternalDeposit         Party = "EXTERNAL_DEPOSIT"
	ExternalWire            Party = "EXTERNAL_WIRE"
	ExternalMerchantLuxury  Party = "EXTERNAL_MERCHANT_LUXURY_GOODS"
	ExternalSupplierHighGeo Party = "EXTERNAL_SUPPLIER_HIGH_RISK_GEO"
)

var externalParties = map[Party]struct{}{
	ExternalDeposit:         {},
	ExternalWire:            {},
	ExternalMerchantLuxury:  {},
	ExternalSupplierHighGeo: {},
}

// ExternalParties lists the sentinels in a stable order.
func ExternalParties() []Party {
	return []Party{ExternalDeposit, ExternalWire, ExternalMerchantLuxury, ExternalSupplierHighGeo}
}

// UserParty returns the party for a real user.
func UserParty(id UserID) Party { return Party(id) }

// IsExternal reports whether p is one of the external-entity sentinels.
func (p Party) IsExternal() bool {
	_, ok := externalParties[p]
	return ok
}

// UserID returns the user behind p, or false for sentinels.
func (p Party) UserID() (UserID, bool) {
	if p.IsExternal() || p == "" {
		return "", false
	}
	return UserID(p), true
}

func (p Party) String() string { return string(p) }

// ParseParty accepts a sentinel or a well-formed user id.
func ParseParty(s string) (Party, error) {
	p := Party(s)
	if p.IsExternal() {
		return p, nil
	}
	id, err := ParseUserID(s)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid transaction party")
	}
	return UserParty(id), nil
}
