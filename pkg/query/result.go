package query

// Result holds the outcome of one statement execution.
//
// Statements that produce a result set fill Columns and Rows. Statements
// that do not (DDL, DML) leave Columns nil and report RowsAffected.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// HasRows reports whether the statement produced a column description.
func (r *Result) HasRows() bool {
	return r.Columns != nil
}
