package dataset

import (
	"fmt"
	"strconv"
	"time"

	"amlgen/internal/generator/models"
	dErrors "amlgen/pkg/domain-errors"
	"amlgen/pkg/money"
)

// Table names. They double as file stems, table names and topic suffixes.
const (
	TableUsers        = "users"
	TableTransactions = "transactions"
	TableAlerts       = "alerts"
)

// Column orders are the wire contract with downstream tooling.
var (
	UserColumns        = []string{"user_id", "name", "occupation", "email", "phone", "address", "annual_income", "risk_score", "joined_date", "is_pep"}
	TransactionColumns = []string{"txn_id", "sender_id", "receiver_id", "amount", "currency", "timestamp", "txn_type"}
	AlertColumns       = []string{"alert_id", "user_id", "trigger_reason", "status", "created_at", "severity"}
)

// Table is one entity kind rendered as strings in column order.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	// Keys holds, per row, the user id the row belongs to. Sinks that
	// partition by owner use it.
	Keys []string
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Export is the serialized form of a dataset.
type Export struct {
	Users        Table
	Transactions Table
	Alerts       Table
}

// Tables returns the three tables in their fixed order.
func (e Export) Tables() []Table {
	return []Table{e.Users, e.Transactions, e.Alerts}
}

// Export assembles d.
func (d *Dataset) Export() (Export, error) {
	return Assemble(d.Users, d.Transactions, d.Alerts)
}

// Assemble renders the three collections. It fails with CodeEmptyDataset if
// any collection is empty; values are formatted, never altered.
func Assemble(users []models.User, txns []models.Transaction, alerts []models.Alert) (Export, error) {
	counts := []struct {
		name string
		n    int
	}{{TableUsers, len(users)}, {TableTransactions, len(txns)}, {TableAlerts, len(alerts)}}
	for _, c := range counts {
		if c.n == 0 {
			return Export{}, dErrors.New(dErrors.CodeEmptyDataset, fmt.Sprintf("refusing to export a dataset without %s", c.name))
		}
	}

	export := Export{
		Users:        Table{Name: TableUsers, Columns: UserColumns},
		Transactions: Table{Name: TableTransactions, Columns: TransactionColumns},
		Alerts:       Table{Name: TableAlerts, Columns: AlertColumns},
	}
	for _, u := range users {
		export.Users.Rows = append(export.Users.Rows, UserRow(u))
		export.Users.Keys = append(export.Users.Keys, u.ID.String())
	}
	for _, t := range txns {
		export.Transactions.Rows = append(export.Transactions.Rows, TransactionRow(t))
		export.Transactions.Keys = append(export.Transactions.Keys, owner(t))
	}
	for _, a := range alerts {
		export.Alerts.Rows = append(export.Alerts.Rows, AlertRow(a))
		export.Alerts.Keys = append(export.Alerts.Keys, a.UserID.String())
	}
	return export, nil
}

func UserRow(u models.User) []string {
	return []string{
		u.ID.String(),
		u.Name,
		string(u.Occupation),
		u.Email,
		u.Phone,
		u.Address,
		strconv.FormatInt(u.AnnualIncome, 10),
		strconv.FormatFloat(u.RiskScore, 'f', -1, 64),
		u.JoinedDate.Format(models.DateLayout),
		strconv.FormatBool(u.IsPEP),
	}
}

func TransactionRow(t models.Transaction) []string {
	return []string{
		t.ID.String(),
		t.SenderID.String(),
		t.ReceiverID.String(),
		money.Format(t.Amount),
		t.Currency,
		t.Timestamp.UTC().Format(time.RFC3339),
		string(t.Type),
	}
}

func AlertRow(a models.Alert) []string {
	return []string{
		a.ID.String(),
		a.UserID.String(),
		string(a.Reason),
		string(a.Status),
		a.CreatedAt.UTC().Format(time.RFC3339),
		string(a.Severity),
	}
}

// owner is the user a transaction is filed under: the sender when it is a
// user, otherwise the receiver.
func owner(t models.Transaction) string {
	if uid, ok := t.SenderID.UserID(); ok {
		return uid.String()
	}
	if uid, ok := t.ReceiverID.UserID(); ok {
		return uid.String()
	}
	return t.SenderID.String()
}
