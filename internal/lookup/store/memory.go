package store

import (
	"context"
	"sync"

	"amlgen/internal/dataset"
	"amlgen/internal/generator/models"
	id "amlgen/pkg/domain"
)

// InMemory indexes one dataset. Results are copies; callers may modify them.
type InMemory struct {
	mu           sync.RWMutex
	users        map[id.UserID]models.User
	alerts       map[id.AlertID]models.Alert
	alertsByUser map[id.UserID][]models.Alert
	txnsByUser   map[id.UserID][]models.Transaction
	allAlerts    []models.Alert
}

// NewInMemory creates an empty store. Load fills it.
func NewInMemory() *InMemory {
	s := &InMemory{}
	s.reset()
	return s
}

// FromDataset creates a store holding ds.
func FromDataset(ds *dataset.Dataset) *InMemory {
	s := NewInMemory()
	s.Load(ds)
	return s
}

func (s *InMemory) reset() {
	s.users = make(map[id.UserID]models.User)
	s.alerts = make(map[id.AlertID]models.Alert)
	s.alertsByUser = make(map[id.UserID][]models.Alert)
	s.txnsByUser = make(map[id.UserID][]models.Transaction)
	s.allAlerts = nil
}

// Load replaces the store's contents with ds.
func (s *InMemory) Load(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()

	for _, u := range ds.Users {
		s.users[u.ID] = u
	}
	for _, t := range ds.Transactions {
		if uid, ok := t.SenderID.UserID(); ok {
			s.txnsByUser[uid] = append(s.txnsByUser[uid], t)
		}
		if uid, ok := t.ReceiverID.UserID(); ok {
			s.txnsByUser[uid] = append(s.txnsByUser[uid], t)
		}
	}
	for _, a := range ds.Alerts {
		s.alerts[a.ID] = a
		s.alertsByUser[a.UserID] = append(s.alertsByUser[a.UserID], a)
		s.allAlerts = append(s.allAlerts, a)
	}

	for _, txns := range s.txnsByUser {
		sortTransactions(txns)
	}
	for _, alerts := range s.alertsByUser {
		sortAlerts(alerts)
	}
	sortAlerts(s.allAlerts)
}

func (s *InMemory) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *InMemory) FindAlert(_ context.Context, alertID id.AlertID) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *InMemory) ListAlerts(_ context.Context, filter AlertFilter) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Alert, 0, len(s.allAlerts))
	for _, a := range s.allAlerts {
		if filter.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *InMemory) AlertsByUser(_ context.Context, userID id.UserID) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Alert{}, s.alertsByUser[userID]...), nil
}

// TransactionsByUser returns every transaction the user sent or received.
func (s *InMemory) TransactionsByUser(_ context.Context, userID id.UserID) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Transaction{}, s.txnsByUser[userID]...), nil
}
