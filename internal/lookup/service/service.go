// Package service answers the questions an analyst asks while triaging an
// alert: who is this user, what did they send and receive, what else fired.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"amlgen/internal/generator/models"
	"amlgen/internal/lookup/metrics"
	"amlgen/internal/lookup/store"
	"amlgen/internal/sentinel"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

// Store is the read side of a dataset.
// Error Contract:
// - FindUser and FindAlert return sentinel.ErrNotFound when nothing matches
// - list methods return an empty slice, never ErrNotFound
type Store interface {
	FindUser(ctx context.Context, userID id.UserID) (*models.User, error)
	FindAlert(ctx context.Context, alertID id.AlertID) (*models.Alert, error)
	ListAlerts(ctx context.Context, filter store.AlertFilter) ([]models.Alert, error)
	AlertsByUser(ctx context.Context, userID id.UserID) ([]models.Alert, error)
	TransactionsByUser(ctx context.Context, userID id.UserID) ([]models.Transaction, error)
}

// CaseFile is everything known about the user behind one alert.
type CaseFile struct {
	Alert        models.Alert
	User         models.User
	Alerts       []models.Alert
	Transactions []models.Transaction
}

type Option func(*Service)

type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	defer s.observe("get_user", time.Now())
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, s.translate("get_user", err, fmt.Sprintf("user %s not found", userID))
	}
	return user, nil
}

func (s *Service) GetAlert(ctx context.Context, alertID id.AlertID) (*models.Alert, error) {
	defer s.observe("get_alert", time.Now())
	alert, err := s.store.FindAlert(ctx, alertID)
	if err != nil {
		return nil, s.translate("get_alert", err, fmt.Sprintf("alert %s not found", alertID))
	}
	return alert, nil
}

func (s *Service) ListAlerts(ctx context.Context, filter store.AlertFilter) ([]models.Alert, error) {
	defer s.observe("list_alerts", time.Now())
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown alert status %q", filter.Status))
	}
	if filter.Severity != "" && !filter.Severity.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown severity %q", filter.Severity))
	}
	alerts, err := s.store.ListAlerts(ctx, filter)
	if err != nil {
		return nil, s.translate("list_alerts", err, "")
	}
	return alerts, nil
}

// AlertsForUser fails with CodeNotFound for an unknown user rather than
// returning an empty list, so a typo is not mistaken for a clean record.
func (s *Service) AlertsForUser(ctx context.Context, userID id.UserID) ([]models.Alert, error) {
	defer s.observe("alerts_for_user", time.Now())
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	alerts, err := s.store.AlertsByUser(ctx, userID)
	if err != nil {
		return nil, s.translate("alerts_for_user", err, "")
	}
	return alerts, nil
}

// TransactionsForUser returns what the user sent or received, oldest first.
func (s *Service) TransactionsForUser(ctx context.Context, userID id.UserID) ([]models.Transaction, error) {
	defer s.observe("transactions_for_user", time.Now())
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	txns, err := s.store.TransactionsByUser(ctx, userID)
	if err != nil {
		return nil, s.translate("transactions_for_user", err, "")
	}
	return txns, nil
}

// CaseFile gathers an alert with its user, the user's other alerts and
// every transaction they touched.
func (s *Service) CaseFile(ctx context.Context, alertID id.AlertID) (*CaseFile, error) {
	defer s.observe("case_file", time.Now())
	alert, err := s.GetAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, alert.UserID)
	if err != nil {
		// An alert always references a user; a miss means the tables disagree.
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("alert %s references missing user %s", alertID, alert.UserID))
		}
		return nil, err
	}
	alerts, err := s.store.AlertsByUser(ctx, user.ID)
	if err != nil {
		return nil, s.translate("case_file", err, "")
	}
	txns, err := s.store.TransactionsByUser(ctx, user.ID)
	if err != nil {
		return nil, s.translate("case_file", err, "")
	}
	return &CaseFile{Alert: *alert, User: *user, Alerts: alerts, Transactions: txns}, nil
}

// translate maps store errors to domain errors exactly once.
func (s *Service) translate(query string, err error, notFound string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		if s.metrics != nil {
			s.metrics.IncrementNotFound(query)
		}
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	if s.logger != nil {
		s.logger.Error("lookup query failed", "query", query, "error", err)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, query+" failed")
}

func (s *Service) observe(query string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveQuery(query, start)
	}
}
