package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"amlgen/internal/dataset"
)

// Database is what the Postgres sink needs from a pool. *database.Pool
// satisfies it.
type Database interface {
	Migrate(ctx context.Context) error
	RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Table names of the dataset schema.
const (
	PGUsers        = "aml_users"
	PGTransactions = "aml_transactions"
	PGAlerts       = "aml_alerts"
)

// Casts applied to the string columns of an export, keyed by column name.
var columnCasts = map[string]string{
	"annual_income": "bigint",
	"risk_score":    "double precision",
	"joined_date":   "date",
	"is_pep":        "boolean",
	"amount":        "numeric",
	"timestamp":     "timestamptz",
	"alert_id":      "uuid",
	"created_at":    "timestamptz",
}

// Postgres replaces the contents of the dataset tables with an export in
// one transaction. Readers see either the previous dataset or the new one.
type Postgres struct {
	db Database
}

func NewPostgres(db Database) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Write(ctx context.Context, export dataset.Export) error {
	if err := p.db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate dataset schema: %w", err)
	}
	return p.db.RunInTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+PGAlerts+", "+PGTransactions+", "+PGUsers); err != nil {
			return fmt.Errorf("truncate dataset tables: %w", err)
		}
		for _, table := range export.Tables() {
			if err := insertTable(ctx, tx, pgTable(table.Name), table); err != nil {
				return err
			}
		}
		return nil
	})
}

func pgTable(name string) string {
	return "aml_" + name
}

func insertTable(ctx context.Context, tx *sql.Tx, name string, table dataset.Table) error {
	stmt, err := tx.PrepareContext(ctx, insertStatement(name, table.Columns))
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(table.Columns))
	for i, row := range table.Rows {
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", name, i, err)
		}
	}
	return nil
}

func insertStatement(table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = `"` + c + `"`
		params[i] = fmt.Sprintf("$%d", i+1)
		if cast, ok := columnCasts[c]; ok {
			params[i] += "::" + cast
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(quoted, ", "), strings.Join(params, ", "))
}
