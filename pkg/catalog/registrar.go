package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/duckbq/duckbq/pkg/connection"
)

// parquetExt is the only recognized columnar file extension.
const parquetExt = ".parquet"

// NoDataFoundError reports a data directory with no registrable files.
type NoDataFoundError struct {
	Dir string
}

func (e *NoDataFoundError) Error() string {
	return fmt.Sprintf("no parquet files found in %s", e.Dir)
}

// Binding maps a registered table name to its source file.
type Binding struct {
	Table  string
	Source string
}

// Registrar creates one view per Parquet file under a logical dataset.
type Registrar struct {
	mgr *connection.Manager
}

// NewRegistrar creates a registrar backed by the given connection manager.
func NewRegistrar(mgr *connection.Manager) *Registrar {
	return &Registrar{mgr: mgr}
}

// Register discovers Parquet files directly inside dir (non-recursive),
// ensures the dataset schema exists, and creates two views per file: a
// qualified "dataset"."table" view reading the file, and an unqualified
// "table" mirror so bare references resolve too. Views use
// CREATE OR REPLACE, so repeated registration into a live session is
// not an error.
//
// Files are processed in sorted path order. Table names come from the
// sanitized file stem; collisions within one pass take _2, _3, ...
// suffixes. The returned bindings preserve registration order.
func (r *Registrar) Register(ctx context.Context, dir, dataset string) ([]Binding, error) {
	files, err := discoverParquet(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &NoDataFoundError{Dir: dir}
	}

	if _, err := r.mgr.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, dataset)); err != nil {
		return nil, fmt.Errorf("failed to create schema %s: %w", dataset, err)
	}

	registry := newNameRegistry()
	bindings := make([]Binding, 0, len(files))

	for _, file := range files {
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		base, err := Sanitize(stem)
		if err != nil {
			return nil, err
		}
		table := registry.claim(base)

		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		// Single quotes in the path are doubled for the SQL literal.
		pathSQL := strings.ReplaceAll(filepath.ToSlash(abs), "'", "''")

		createView := fmt.Sprintf(
			`CREATE OR REPLACE VIEW %q.%q AS SELECT * FROM read_parquet('%s')`,
			dataset, table, pathSQL,
		)
		if _, err := r.mgr.Exec(ctx, createView); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", file, err)
		}

		mirror := fmt.Sprintf(
			`CREATE OR REPLACE VIEW %q AS SELECT * FROM %q.%q`,
			table, dataset, table,
		)
		if _, err := r.mgr.Exec(ctx, mirror); err != nil {
			return nil, fmt.Errorf("failed to mirror %s: %w", table, err)
		}

		bindings = append(bindings, Binding{Table: table, Source: file})
	}

	return bindings, nil
}

// discoverParquet lists Parquet files directly inside dir, sorted by
// path. Subdirectories are not descended into.
func discoverParquet(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != parquetExt {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
