package query

import (
	"context"
	"fmt"

	"github.com/duckbq/duckbq/pkg/connection"
)

// Executor runs translated SQL statements against DuckDB.
type Executor struct {
	mgr        *connection.Manager
	classifier *Classifier
}

// NewExecutor creates a new statement executor.
func NewExecutor(mgr *connection.Manager) *Executor {
	return &Executor{
		mgr:        mgr,
		classifier: NewClassifier(),
	}
}

// Run executes one statement. Statements that produce a result set are
// fetched up to fetchLimit rows (0 means all); everything else goes
// through the exec path and reports affected rows only.
func (e *Executor) Run(ctx context.Context, sql string, fetchLimit int) (*Result, error) {
	if e.classifier.IsQuery(sql) {
		return e.runQuery(ctx, sql, fetchLimit)
	}
	return e.runExec(ctx, sql)
}

func (e *Executor) runQuery(ctx context.Context, sql string, fetchLimit int) (*Result, error) {
	// The engine message is surfaced verbatim so the CLI can prefix it.
	rows, err := e.mgr.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var resultRows [][]any
	for rows.Next() {
		if fetchLimit > 0 && len(resultRows) >= fetchLimit {
			break
		}

		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]any, len(columns))
		for i, val := range values {
			row[i] = convertValue(val)
		}
		resultRows = append(resultRows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &Result{
		Columns: columns,
		Rows:    resultRows,
	}, nil
}

func (e *Executor) runExec(ctx context.Context, sql string) (*Result, error) {
	result, err := e.mgr.Exec(ctx, sql)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return &Result{RowsAffected: rowsAffected}, nil
}

// convertValue normalizes driver values for display and comparison.
func convertValue(val any) any {
	switch v := val.(type) {
	case []byte:
		return string(v)
	default:
		return v
	}
}
