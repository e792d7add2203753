// Package query executes SQL statements against DuckDB and shapes results.
package query

import (
	"strings"
)

// StatementType represents the category of a SQL statement.
type StatementType int

// Statement types.
const (
	StatementTypeQuery StatementType = iota // SELECT, SHOW, DESCRIBE, ...
	StatementTypeDDL                        // CREATE, DROP, ALTER
	StatementTypeDML                        // INSERT, UPDATE, DELETE, ...
)

// queryPrefixes are statement forms that produce a result set. WITH,
// FROM, TABLE, VALUES and SUMMARIZE cover DuckDB's query shorthands;
// CALL covers table functions.
var queryPrefixes = []string{
	"SELECT",
	"WITH",
	"FROM",
	"TABLE",
	"VALUES",
	"CALL",
	"SHOW",
	"DESCRIBE",
	"DESC",
	"EXPLAIN",
	"SUMMARIZE",
	"PRAGMA",
}

// Classifier decides how a SQL statement should be dispatched.
type Classifier struct{}

// NewClassifier creates a new SQL classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the statement category based on its leading keyword.
func (c *Classifier) Classify(sql string) StatementType {
	upperSQL := strings.ToUpper(strings.TrimSpace(sql))

	if c.isQueryStatement(upperSQL) {
		return StatementTypeQuery
	}
	if strings.HasPrefix(upperSQL, "CREATE") ||
		strings.HasPrefix(upperSQL, "DROP") ||
		strings.HasPrefix(upperSQL, "ALTER") {
		return StatementTypeDDL
	}
	return StatementTypeDML
}

// IsQuery reports whether the statement produces a result set.
func (c *Classifier) IsQuery(sql string) bool {
	return c.Classify(sql) == StatementTypeQuery
}

func (c *Classifier) isQueryStatement(upperSQL string) bool {
	for _, prefix := range queryPrefixes {
		if strings.HasPrefix(upperSQL, prefix) {
			return true
		}
	}
	return false
}
