// Package dataset holds the output of a generation run and hands it to sinks.
//
// A Dataset is the single accumulation point of a run. Stages return what
// they produced and the orchestrator appends it here; nothing else writes to
// a Dataset. Once Verify passes, a Dataset is treated as read-only.
package dataset

import (
	"log/slog"
	"sort"

	"amlgen/internal/generator/models"
	"amlgen/internal/generator/window"
)

// Dataset is the three collections of one run plus the parameters that
// reproduce it.
type Dataset struct {
	Seed         uint64
	Window       window.Window
	Currency     string
	Users        []models.User
	Transactions []models.Transaction
	Alerts       []models.Alert
}

// New returns an empty dataset for a run.
func New(seed uint64, w window.Window, currency string) *Dataset {
	return &Dataset{Seed: seed, Window: w, Currency: currency}
}

// Append adds the output of one stage.
func (d *Dataset) Append(txns []models.Transaction, alerts []models.Alert) {
	d.Transactions = append(d.Transactions, txns...)
	d.Alerts = append(d.Alerts, alerts...)
}

// Summary counts what a dataset contains.
type Summary struct {
	Users              int
	PEPs               int
	Transactions       int
	Alerts             int
	TransactionsByType map[models.TxnType]int
	AlertsByTypology   map[models.Typology]int
	AlertsBySeverity   map[models.Severity]int
}

func (d *Dataset) Summary() Summary {
	s := Summary{
		Users:              len(d.Users),
		Transactions:       len(d.Transactions),
		Alerts:             len(d.Alerts),
		TransactionsByType: make(map[models.TxnType]int),
		AlertsByTypology:   make(map[models.Typology]int),
		AlertsBySeverity:   make(map[models.Severity]int),
	}
	for _, u := range d.Users {
		if u.IsPEP {
			s.PEPs++
		}
	}
	for _, t := range d.Transactions {
		s.TransactionsByType[t.Type]++
	}
	for _, a := range d.Alerts {
		typology, _ := a.Reason.Typology()
		s.AlertsByTypology[typology]++
		s.AlertsBySeverity[a.Severity]++
	}
	return s
}

// LogValue renders the summary as a flat slog group.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("users", s.Users),
		slog.Int("peps", s.PEPs),
		slog.Int("transactions", s.Transactions),
		slog.Int("alerts", s.Alerts),
	}
	typologies := make([]string, 0, len(s.AlertsByTypology))
	for t := range s.AlertsByTypology {
		typologies = append(typologies, string(t))
	}
	sort.Strings(typologies)
	for _, t := range typologies {
		attrs = append(attrs, slog.Int("alerts_"+t, s.AlertsByTypology[models.Typology(t)]))
	}
	return slog.GroupValue(attrs...)
}
