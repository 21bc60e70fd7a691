// Package migrations embeds the SQL schema of the dataset tables. The
// Postgres sink applies the up migrations before loading a dataset.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var FS embed.FS

// Up returns the contents of every *.up.sql file in name order.
func Up() ([]string, error) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	scripts := make([]string, 0, len(files))
	for _, file := range files {
		content, err := fs.ReadFile(FS, file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		scripts = append(scripts, string(content))
	}
	return scripts, nil
}
