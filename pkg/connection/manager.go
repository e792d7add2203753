// Package connection wraps the DuckDB database handle shared by one run.
package connection

import (
	"context"
	"database/sql"
	"sync"
)

// Manager serializes write access to the in-memory DuckDB session.
//
// A single invocation registers views, optionally loads ingested rows,
// and then executes one statement. Reads can run concurrently; writes
// (view registration, pipeline loads) take the write mutex.
type Manager struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// NewManager creates a manager for the given database handle.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Query executes a read statement.
func (m *Manager) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return m.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query expected to return at most one row.
func (m *Manager) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return m.db.QueryRowContext(ctx, query, args...)
}

// Exec executes a write statement. Writes are serialized.
func (m *Manager) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return m.db.ExecContext(ctx, query, args...)
}

// ExecTx runs fn inside a transaction, holding the write mutex for its
// duration. The transaction is rolled back if fn returns an error.
func (m *Manager) ExecTx(ctx context.Context, fn func(*sql.Tx) error) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// DB returns the underlying database handle.
func (m *Manager) DB() *sql.DB {
	return m.db
}
