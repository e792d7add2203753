// Package render formats statement results as aligned text tables.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/duckbq/duckbq/pkg/query"
)

// ValueNull is the display token for SQL NULL.
const ValueNull = "NULL"

// execSuccessMessage is printed for statements with no result set.
const execSuccessMessage = "Statement executed successfully."

// Render writes res to w as an aligned text table showing at most
// maxRows data rows. The caller fetches one row beyond maxRows; if that
// extra row is present a truncation notice follows the table. A result
// without a column description renders as a single success line.
func Render(w io.Writer, res *query.Result, maxRows int) error {
	if !res.HasRows() {
		_, err := fmt.Fprintln(w, execSuccessMessage)
		return err
	}

	rows := res.Rows
	truncated := false
	if maxRows >= 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
		truncated = true
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(res.Columns))
		for j, val := range row {
			cells[i][j] = formatValue(val)
		}
	}

	// Widths count code points so multi-byte values stay aligned.
	widths := make([]int, len(res.Columns))
	for i, col := range res.Columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range cells {
		for i, val := range row {
			if n := utf8.RuneCountInString(val); n > widths[i] {
				widths[i] = n
			}
		}
	}

	header := make([]string, len(res.Columns))
	separator := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = pad(col, widths[i])
		separator[i] = strings.Repeat("-", widths[i])
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, " | ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Join(separator, "-+-")); err != nil {
		return err
	}

	for _, row := range cells {
		line := make([]string, len(row))
		for i, val := range row {
			line[i] = pad(val, widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(line, " | ")); err != nil {
			return err
		}
	}

	if truncated {
		if _, err := fmt.Fprintf(w, "... showing first %d rows\n", maxRows); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return ValueNull
	}
	return fmt.Sprintf("%v", v)
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
