// Package sink writes dataset exports to files, Postgres and Kafka.
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"amlgen/internal/dataset"
)

// CSV writes one file per table, named after the table, into a directory.
// Each file is written to a temporary name and renamed into place, so a
// reader never sees a half-written table.
type CSV struct {
	dir string
}

func NewCSV(dir string) *CSV {
	return &CSV{dir: dir}
}

func (c *CSV) Name() string { return "csv" }

func (c *CSV) Write(ctx context.Context, export dataset.Export) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, table := range export.Tables() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.writeTable(table); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the file a table is written to.
func (c *CSV) Path(table string) string {
	return filepath.Join(c.dir, table+".csv")
}

func (c *CSV) writeTable(table dataset.Table) (err error) {
	tmp, err := os.CreateTemp(c.dir, "."+table.Name+"-*.csv")
	if err != nil {
		return fmt.Errorf("create %s file: %w", table.Name, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(table.Columns); err != nil {
		return fmt.Errorf("write %s header: %w", table.Name, err)
	}
	if err = w.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write %s rows: %w", table.Name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s file: %w", table.Name, err)
	}
	if err = os.Rename(tmp.Name(), c.Path(table.Name)); err != nil {
		return fmt.Errorf("move %s file into place: %w", table.Name, err)
	}
	return nil
}
