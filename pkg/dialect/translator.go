// Package dialect rewrites BigQuery table references into DuckDB form.
package dialect

import (
	"regexp"
	"strings"
)

// Table reference patterns. BigQuery quotes qualified names with
// backticks: `project.dataset.table` or `dataset.table`. The project
// segment may contain hyphens; dataset and table segments may not.
var (
	threePartRef = regexp.MustCompile("`(?:([A-Za-z0-9_-]+)\\.)?([A-Za-z0-9_]+)\\.([A-Za-z0-9_]+)`")
	twoPartRef   = regexp.MustCompile("`([A-Za-z0-9_]+)\\.([A-Za-z0-9_]+)`")
)

// Translator converts BigQuery-quoted table references to DuckDB-quoted
// ones. It is purely textual: no SQL parsing takes place, so a backtick
// reference inside a string literal is rewritten like any other. That is
// a documented limitation, not a bug.
type Translator struct {
	defaultDataset string
}

// NewTranslator creates a translator. defaultDataset qualifies a
// two-part match whose dataset capture is empty.
func NewTranslator(defaultDataset string) *Translator {
	return &Translator{defaultDataset: defaultDataset}
}

// Translate rewrites sql in three ordered passes:
//
//  1. `project.dataset.table` and `dataset.table` become
//     "dataset"."table"; the project segment is dropped.
//  2. Residual `dataset.table` references become "dataset"."table".
//     Pass 1 output carries no backticks, so this pass only sees
//     references pass 1 did not touch. A match with no dataset segment
//     would take the default dataset; the current pattern always
//     captures a dataset, so a bare `table` mention falls through to
//     pass 3 instead.
//  3. Any backtick still standing is a stray column-level quote and is
//     replaced with a double quote.
//
// The result contains no backticks, which makes Translate idempotent on
// its own output.
func (t *Translator) Translate(sql string) string {
	out := threePartRef.ReplaceAllStringFunc(sql, func(m string) string {
		sub := threePartRef.FindStringSubmatch(m)
		return quoteRef(sub[2], sub[3])
	})

	out = twoPartRef.ReplaceAllStringFunc(out, func(m string) string {
		sub := twoPartRef.FindStringSubmatch(m)
		dataset := sub[1]
		if dataset == "" {
			dataset = t.defaultDataset
		}
		return quoteRef(dataset, sub[2])
	})

	return strings.ReplaceAll(out, "`", `"`)
}

func quoteRef(dataset, table string) string {
	return `"` + dataset + `"."` + table + `"`
}
