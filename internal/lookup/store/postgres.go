package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"amlgen/internal/generator/models"
	id "amlgen/pkg/domain"
	"amlgen/pkg/money"
)

// PostgresStore reads the tables written by the Postgres sink.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	userColumns  = `user_id, name, occupation, email, phone, address, annual_income, risk_score, joined_date, is_pep`
	alertColumns = `alert_id::text, user_id, trigger_reason, status, created_at, severity`
	txnColumns   = `txn_id, sender_id, receiver_id, amount::text, currency, "timestamp", txn_type`
)

func (s *PostgresStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM aml_users WHERE user_id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, userID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindAlert(ctx context.Context, alertID id.AlertID) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM aml_alerts WHERE alert_id = $1::uuid`
	alert, err := scanAlert(s.db.QueryRowContext(ctx, query, alertID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find alert by id: %w", err)
	}
	return alert, nil
}

func (s *PostgresStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Severity != "" {
		args = append(args, string(filter.Severity))
		where = append(where, fmt.Sprintf("severity = $%d", len(args)))
	}
	query := `SELECT ` + alertColumns + ` FROM aml_alerts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, alert_id`
	return s.queryAlerts(ctx, "list alerts", query, args...)
}

func (s *PostgresStore) AlertsByUser(ctx context.Context, userID id.UserID) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM aml_alerts WHERE user_id = $1 ORDER BY created_at, alert_id`
	return s.queryAlerts(ctx, "list alerts by user", query, userID.String())
}

// TransactionsByUser returns every transaction the user sent or received.
func (s *PostgresStore) TransactionsByUser(ctx context.Context, userID id.UserID) ([]models.Transaction, error) {
	query := `
		SELECT ` + txnColumns + `
		FROM aml_transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY "timestamp", txn_id
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions by user: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

func (s *PostgresStore) queryAlerts(ctx context.Context, op, query string, args ...any) ([]models.Alert, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u          models.User
		userID     string
		occupation string
		joined     time.Time
	)
	if err := row.Scan(&userID, &u.Name, &occupation, &u.Email, &u.Phone, &u.Address,
		&u.AnnualIncome, &u.RiskScore, &joined, &u.IsPEP); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	u.Occupation = models.Occupation(occupation)
	u.JoinedDate = joined.UTC()
	return &u, nil
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		a                                      models.Alert
		alertID, userID, reason, status, sever string
		createdAt                              time.Time
	)
	if err := row.Scan(&alertID, &userID, &reason, &status, &createdAt, &sever); err != nil {
		return nil, err
	}
	a.ID = id.AlertID(alertID)
	a.UserID = id.UserID(userID)
	a.Reason = models.TriggerReason(reason)
	a.Status = models.AlertStatus(status)
	a.CreatedAt = createdAt.UTC()
	a.Severity = models.Severity(sever)
	return &a, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t                                    models.Transaction
		txnID, sender, receiver, amount, typ string
		ts                                   time.Time
	)
	if err := row.Scan(&txnID, &sender, &receiver, &amount, &t.Currency, &ts, &typ); err != nil {
		return nil, err
	}
	parsed, err := money.Parse(amount)
	if err != nil {
		return nil, err
	}
	t.ID = id.TxnID(txnID)
	t.SenderID = id.Party(sender)
	t.ReceiverID = id.Party(receiver)
	t.Amount = parsed
	t.Timestamp = ts.UTC()
	t.Type = models.TxnType(typ)
	return &t, nil
}
