package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duckbq/duckbq/pkg/connection"
)

// Report answers the three fixed questions about a loaded taxi table.
type Report struct {
	StartDate     string
	EndDate       string
	CreditCardPct float64
	TotalTips     float64
}

// TaxiReport runs the date-range, credit-card share, and total-tips
// queries against a loaded trip table.
func TaxiReport(ctx context.Context, mgr *connection.Manager, table string) (*Report, error) {
	report := &Report{}

	var start, end sql.NullString
	dateRangeSQL := fmt.Sprintf(
		`SELECT MIN(trip_pickup_date_time), MAX(trip_pickup_date_time) FROM %q`, table)
	if err := mgr.QueryRow(ctx, dateRangeSQL).Scan(&start, &end); err != nil {
		return nil, fmt.Errorf("date range query failed: %w", err)
	}
	report.StartDate = start.String
	report.EndDate = end.String

	creditSQL := fmt.Sprintf(
		`SELECT ROUND(COUNT(CASE WHEN payment_type ILIKE '%%credit%%' THEN 1 END) * 100.0 / COUNT(*), 2) FROM %q`,
		table)
	if err := mgr.QueryRow(ctx, creditSQL).Scan(&report.CreditCardPct); err != nil {
		return nil, fmt.Errorf("credit card share query failed: %w", err)
	}

	tipsSQL := fmt.Sprintf(
		`SELECT ROUND(SUM(CAST(tip_amt AS DOUBLE)), 2) FROM %q`, table)
	if err := mgr.QueryRow(ctx, tipsSQL).Scan(&report.TotalTips); err != nil {
		return nil, fmt.Errorf("total tips query failed: %w", err)
	}

	return report, nil
}
