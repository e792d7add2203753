package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/duckbq/duckbq/pkg/connection"
)

// loadIDColumn stamps every loaded row with the run that produced it.
const loadIDColumn = "_load_id"

// insertBatchSize bounds the number of rows per INSERT statement.
const insertBatchSize = 500

// Pipeline loads one REST resource into a DuckDB table.
type Pipeline struct {
	mgr    *connection.Manager
	client *Client
	cfg    Config
	logger *slog.Logger
}

// LoadInfo summarizes one completed load.
type LoadInfo struct {
	LoadID   string
	Table    string
	Pages    int
	Rows     int
	Duration time.Duration
}

// New creates a pipeline for the given resource. httpClient may be nil.
func New(mgr *connection.Manager, cfg Config, httpClient *http.Client, logger *slog.Logger) *Pipeline {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		mgr:    mgr,
		client: NewClient(cfg.BaseURL, cfg.PageParam, httpClient),
		cfg:    cfg,
		logger: logger,
	}
}

// Run fetches pages starting at the base page until the first empty
// page, then replaces the target table with the collected rows in a
// single transaction. Columns are inferred from the first row; every
// row also carries a _load_id identifying this run.
func (p *Pipeline) Run(ctx context.Context) (*LoadInfo, error) {
	start := time.Now()
	loadID := uuid.NewString()

	var collected []map[string]any
	pages := 0
	for page := p.cfg.BasePage; ; page++ {
		rows, err := p.client.FetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}
		collected = append(collected, rows...)
		pages++
		p.logger.Info("fetched page", "page", page, "rows", len(rows), "total", len(collected))
	}

	if len(collected) == 0 {
		return nil, fmt.Errorf("no rows received from %s", p.cfg.BaseURL)
	}

	columns, columnTypes := inferSchema(collected[0])

	err := p.mgr.ExecTx(ctx, func(tx *sql.Tx) error {
		if err := p.createTable(ctx, tx, columns, columnTypes); err != nil {
			return err
		}
		return p.insertRows(ctx, tx, columns, collected, loadID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", p.cfg.Table, err)
	}

	info := &LoadInfo{
		LoadID:   loadID,
		Table:    p.cfg.Table,
		Pages:    pages,
		Rows:     len(collected),
		Duration: time.Since(start),
	}
	p.logger.Info("load complete",
		"table", info.Table, "rows", info.Rows, "pages", info.Pages,
		"load_id", info.LoadID, "duration", info.Duration)
	return info, nil
}

// createTable replaces the target table. Replace disposition: a rerun
// drops whatever the previous run loaded.
func (p *Pipeline) createTable(ctx context.Context, tx *sql.Tx, columns []string, columnTypes map[string]string) error {
	colDefs := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		colDefs = append(colDefs, fmt.Sprintf("%q %s", col, columnTypes[col]))
	}
	colDefs = append(colDefs, fmt.Sprintf("%q VARCHAR", loadIDColumn))

	createSQL := fmt.Sprintf("CREATE OR REPLACE TABLE %q (%s)", p.cfg.Table, strings.Join(colDefs, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// insertRows writes all collected rows in placeholder batches. Keys
// missing from a row insert as NULL; keys absent from the first row are
// dropped.
func (p *Pipeline) insertRows(ctx context.Context, tx *sql.Tx, columns []string, rows []map[string]any, loadID string) error {
	quoted := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		quoted = append(quoted, fmt.Sprintf("%q", col))
	}
	quoted = append(quoted, fmt.Sprintf("%q", loadIDColumn))

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(quoted)), ", ") + ")"

	for offset := 0; offset < len(rows); offset += insertBatchSize {
		end := offset + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[offset:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(quoted))
		for i, row := range batch {
			placeholders[i] = rowPlaceholder
			for _, col := range columns {
				args = append(args, bindValue(row[col]))
			}
			args = append(args, loadID)
		}

		insertSQL := fmt.Sprintf(
			"INSERT INTO %q (%s) VALUES %s",
			p.cfg.Table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
		)
		if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
			return fmt.Errorf("failed to insert batch at row %d: %w", offset, err)
		}
	}
	return nil
}

// inferSchema derives column names and DuckDB types from one decoded
// JSON object. Columns are sorted for a deterministic table layout.
func inferSchema(row map[string]any) ([]string, map[string]string) {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	columnTypes := make(map[string]string, len(columns))
	for _, col := range columns {
		columnTypes[col] = jsonToDuckDBType(row[col])
	}
	return columns, columnTypes
}

// jsonToDuckDBType maps a decoded JSON value to a DuckDB column type.
// Nested values and nulls land in VARCHAR.
func jsonToDuckDBType(v any) string {
	switch v.(type) {
	case float64:
		return "DOUBLE"
	case bool:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

// bindValue normalizes a decoded JSON value for a driver placeholder.
// Nested arrays and objects are stored as their JSON text.
func bindValue(v any) any {
	switch v.(type) {
	case nil, string, float64, bool:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
