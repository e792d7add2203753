package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/duckbq/duckbq/pkg/catalog"
	"github.com/duckbq/duckbq/pkg/config"
)

// listTables prints the registered tables and a runnable example query
// referencing the first one.
func listTables(w io.Writer, cfg *config.Config, bindings []catalog.Binding) error {
	fmt.Fprintln(w, "Loaded parquet tables:")

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Source"})
	for _, b := range bindings {
		t.AppendRow(table.Row{cfg.Dataset + "." + b.Table, filepath.Base(b.Source)})
	}
	t.Render()

	example := bindings[0].Table
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintf(w, "  duckbq --query 'SELECT COUNT(*) AS trips FROM `local.%s.%s`'\n", cfg.Dataset, example)
	return nil
}
