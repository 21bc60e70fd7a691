// Package store serves read-only queries over a generated dataset, either
// from memory or from the Postgres tables a loader filled.
package store

import (
	"cmp"
	"slices"

	"amlgen/internal/generator/models"
	"amlgen/internal/sentinel"
)

// ErrNotFound is returned when a user or alert does not exist.
var ErrNotFound = sentinel.ErrNotFound

// AlertFilter narrows ListAlerts. Zero fields match everything.
type AlertFilter struct {
	Status   models.AlertStatus
	Severity models.Severity
}

func (f AlertFilter) Matches(a models.Alert) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	return true
}

// Alerts come back oldest first, transactions likewise; ids break ties.
func sortAlerts(alerts []models.Alert) {
	slices.SortFunc(alerts, func(a, b models.Alert) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func sortTransactions(txns []models.Transaction) {
	slices.SortFunc(txns, func(a, b models.Transaction) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
