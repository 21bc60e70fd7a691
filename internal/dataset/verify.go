package dataset

import (
	"fmt"
	"strings"
	"time"

	"amlgen/internal/generator/models"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
)

// Verify checks the referential and ordering contracts every fixture must
// satisfy before it leaves the generator:
//   - user, transaction and alert ids are unique
//   - every party is a sentinel or an existing user, and a user never pays themselves
//   - amounts are positive, in the dataset currency, and timestamps fall in the window
//   - every alert concerns an existing user, carries a canonical reason, and is
//     raised strictly after every transaction of its scenario that touches that user
//
// Violations are reported as CodeInvariantViolation.
func (d *Dataset) Verify() error {
	users := make(map[id.UserID]struct{}, len(d.Users))
	for _, u := range d.Users {
		if _, dup := users[u.ID]; dup {
			return violation("duplicate user id %s", u.ID)
		}
		users[u.ID] = struct{}{}
		if u.RiskScore < 0 || u.RiskScore > 1 {
			return violation("user %s risk score %v outside [0,1]", u.ID, u.RiskScore)
		}
	}

	txnIDs := make(map[id.TxnID]struct{}, len(d.Transactions))
	for _, t := range d.Transactions {
		if _, dup := txnIDs[t.ID]; dup {
			return violation("duplicate transaction id %s", t.ID)
		}
		txnIDs[t.ID] = struct{}{}

		for _, p := range []id.Party{t.SenderID, t.ReceiverID} {
			if uid, ok := p.UserID(); ok {
				if _, exists := users[uid]; !exists {
					return violation("transaction %s references unknown party %s", t.ID, p)
				}
			} else if !p.IsExternal() {
				return violation("transaction %s has an empty party", t.ID)
			}
		}
		if t.SenderID == t.ReceiverID {
			return violation("transaction %s sends from %s to itself", t.ID, t.SenderID)
		}
		if !t.Amount.IsPositive() {
			return violation("transaction %s amount %s is not positive", t.ID, t.Amount)
		}
		if t.Currency != d.Currency {
			return violation("transaction %s currency %s, dataset uses %s", t.ID, t.Currency, d.Currency)
		}
		if !t.Type.IsValid() {
			return violation("transaction %s has unknown type %q", t.ID, t.Type)
		}
		if !d.Window.Contains(t.Timestamp) {
			return violation("transaction %s at %s is outside the window", t.ID, t.Timestamp.Format(time.RFC3339))
		}
	}

	alertIDs := make(map[id.AlertID]struct{}, len(d.Alerts))
	for _, a := range d.Alerts {
		if _, dup := alertIDs[a.ID]; dup {
			return violation("duplicate alert id %s", a.ID)
		}
		alertIDs[a.ID] = struct{}{}

		if _, exists := users[a.UserID]; !exists {
			return violation("alert %s references unknown user %s", a.ID, a.UserID)
		}
		if !a.Severity.IsValid() {
			return violation("alert %s has unknown severity %q", a.ID, a.Severity)
		}
		typology, ok := a.Reason.Typology()
		if !ok {
			return violation("alert %s has a non-canonical reason %q", a.ID, a.Reason)
		}
		if err := d.verifyTrigger(a, typology); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dataset) verifyTrigger(a models.Alert, typology models.Typology) error {
	triggers := 0
	for _, t := range d.Transactions {
		if !t.Touches(a.UserID) || !hasAnyPrefix(t.ID.String(), typology.TxnPrefixes()) {
			continue
		}
		triggers++
		if !t.Timestamp.Before(a.CreatedAt) {
			return violation("alert %s at %s does not follow transaction %s at %s",
				a.ID, a.CreatedAt.Format(time.RFC3339), t.ID, t.Timestamp.Format(time.RFC3339))
		}
	}
	if triggers == 0 {
		return violation("alert %s on %s has no %s transaction", a.ID, a.UserID, typology)
	}
	return nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func violation(format string, args ...any) error {
	return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf(format, args...))
}
