package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/duckbq/duckbq/pkg/connection"
)

// newTestManager opens an in-memory DuckDB session.
func newTestManager(t *testing.T) *connection.Manager {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("failed to open DuckDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return connection.NewManager(db)
}

// writeParquet materializes the given query as a Parquet file using the
// engine itself.
func writeParquet(t *testing.T, mgr *connection.Manager, path, query string) {
	t.Helper()

	copySQL := fmt.Sprintf(`COPY (%s) TO '%s' (FORMAT PARQUET)`, query, filepath.ToSlash(path))
	if _, err := mgr.Exec(context.Background(), copySQL); err != nil {
		t.Fatalf("failed to write parquet fixture %s: %v", path, err)
	}
}

func TestRegistrar_Register(t *testing.T) {
	mgr := newTestManager(t)
	dir := t.TempDir()

	writeParquet(t, mgr, filepath.Join(dir, "rides.parquet"),
		"SELECT 1 AS id, 'cash' AS payment_type UNION ALL SELECT 2, 'credit'")
	writeParquet(t, mgr, filepath.Join(dir, "Zone Lookup.parquet"),
		"SELECT 10 AS zone_id")

	ctx := context.Background()
	bindings, err := NewRegistrar(mgr).Register(ctx, dir, "taxi")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	want := []Binding{
		{Table: "zone_lookup", Source: filepath.Join(dir, "Zone Lookup.parquet")},
		{Table: "rides", Source: filepath.Join(dir, "rides.parquet")},
	}
	if diff := cmp.Diff(want, bindings); diff != "" {
		t.Errorf("Register() bindings mismatch (-want +got):\n%s", diff)
	}

	// Qualified view reads the file.
	var count int
	if err := mgr.QueryRow(ctx, `SELECT COUNT(*) FROM "taxi"."rides"`).Scan(&count); err != nil {
		t.Fatalf("qualified view query error = %v", err)
	}
	if count != 2 {
		t.Errorf("qualified view row count = %d, want 2", count)
	}

	// Unqualified mirror resolves without the dataset prefix.
	if err := mgr.QueryRow(ctx, `SELECT COUNT(*) FROM "rides"`).Scan(&count); err != nil {
		t.Fatalf("mirror view query error = %v", err)
	}
	if count != 2 {
		t.Errorf("mirror view row count = %d, want 2", count)
	}
}

func TestRegistrar_CollisionSuffix(t *testing.T) {
	mgr := newTestManager(t)
	dir := t.TempDir()

	// Both stems sanitize to trip_data; sorted path order decides who
	// keeps the bare name.
	writeParquet(t, mgr, filepath.Join(dir, "trip data.parquet"), "SELECT 1 AS n")
	writeParquet(t, mgr, filepath.Join(dir, "trip_data.parquet"), "SELECT 2 AS n")

	bindings, err := NewRegistrar(mgr).Register(context.Background(), dir, "taxi")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var names []string
	for _, b := range bindings {
		names = append(names, b.Table)
	}
	want := []string{"trip_data", "trip_data_2"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Register() table names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistrar_CaseInsensitiveCollision(t *testing.T) {
	mgr := newTestManager(t)
	dir := t.TempDir()

	writeParquet(t, mgr, filepath.Join(dir, "Rides.parquet"), "SELECT 1 AS n")
	writeParquet(t, mgr, filepath.Join(dir, "rides.parquet"), "SELECT 2 AS n")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir error = %v", err)
	}
	if len(entries) < 2 {
		t.Skip("filesystem is case-insensitive")
	}

	bindings, err := NewRegistrar(mgr).Register(context.Background(), dir, "taxi")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var names []string
	for _, b := range bindings {
		names = append(names, b.Table)
	}
	// Sorted path order: Rides.parquet first, so it keeps the bare name.
	want := []string{"rides", "rides_2"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Register() table names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistrar_EmptyDir(t *testing.T) {
	mgr := newTestManager(t)
	dir := t.TempDir()

	_, err := NewRegistrar(mgr).Register(context.Background(), dir, "taxi")
	if err == nil {
		t.Fatal("Register() error = nil, want NoDataFoundError")
	}

	var notFound *NoDataFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Register() error = %v, want NoDataFoundError", err)
	}
	if notFound.Dir != dir {
		t.Errorf("NoDataFoundError.Dir = %q, want %q", notFound.Dir, dir)
	}
}

func TestRegistrar_Reregister(t *testing.T) {
	mgr := newTestManager(t)
	dir := t.TempDir()

	writeParquet(t, mgr, filepath.Join(dir, "rides.parquet"), "SELECT 1 AS n")

	registrar := NewRegistrar(mgr)
	ctx := context.Background()

	if _, err := registrar.Register(ctx, dir, "taxi"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	// Views already exist in this session; replace-if-exists keeps the
	// second pass from failing.
	if _, err := registrar.Register(ctx, dir, "taxi"); err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
}

func TestRegistrar_SkipsSubdirectoriesAndOtherFiles(t *testing.T) {
	mgr := newTestManager(t)
	dir := t.TempDir()

	writeParquet(t, mgr, filepath.Join(dir, "rides.parquet"), "SELECT 1 AS n")
	writeParquet(t, mgr, filepath.Join(t.TempDir(), "ignored.parquet"), "SELECT 1 AS n")

	nested := filepath.Join(dir, "nested")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir error = %v", err)
	}
	writeParquet(t, mgr, filepath.Join(nested, "deep.parquet"), "SELECT 1 AS n")
	if err := os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write csv error = %v", err)
	}

	bindings, err := NewRegistrar(mgr).Register(context.Background(), dir, "taxi")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if len(bindings) != 1 || bindings[0].Table != "rides" {
		t.Errorf("Register() bindings = %+v, want only rides", bindings)
	}
}
