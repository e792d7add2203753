// Package cli wires the duckbq commands together.
package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/spf13/cobra"

	"github.com/duckbq/duckbq/pkg/catalog"
	"github.com/duckbq/duckbq/pkg/config"
	"github.com/duckbq/duckbq/pkg/connection"
	"github.com/duckbq/duckbq/pkg/dialect"
	"github.com/duckbq/duckbq/pkg/query"
	"github.com/duckbq/duckbq/pkg/render"
)

// ErrConflictingArguments is returned when both query flags are set.
var ErrConflictingArguments = errors.New("use either --query or --query-file, not both")

// NewRootCmd creates the duckbq command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "duckbq",
		Short: "Run BigQuery-style SQL locally on Parquet data using DuckDB",
		Long: `duckbq registers every Parquet file in a data directory as a view
under a logical dataset, rewrites BigQuery-quoted table references into
DuckDB form, executes the statement in-memory, and prints the result as
an aligned text table.

Without a query it lists the registered tables instead.`,
		RunE:          runQuery,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.String("data-dir", config.DefaultDataDir, "Directory that contains parquet files")
	flags.String("dataset", config.DefaultDataset, "Dataset name exposed to queries")
	flags.String("dialect", config.DefaultDialect, "Input SQL dialect (bigquery or duckdb)")
	flags.String("query", "", "SQL query to execute")
	flags.String("query-file", "", "Path to a .sql file to execute")
	flags.Bool("show-sql", false, "Print translated SQL before execution")
	flags.Int("max-rows", config.DefaultMaxRows, "Maximum number of rows to display")

	rootCmd.AddCommand(newIngestCmd())

	return rootCmd
}

func runQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	// Checked before any filesystem or engine work.
	if cfg.Query != "" && cfg.QueryFile != "" {
		return ErrConflictingArguments
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	mgr := connection.NewManager(db)

	bindings, err := catalog.NewRegistrar(mgr).Register(ctx, cfg.DataDir, cfg.Dataset)
	if err != nil {
		return err
	}

	queryText := cfg.Query
	if cfg.QueryFile != "" {
		content, err := os.ReadFile(cfg.QueryFile)
		if err != nil {
			return fmt.Errorf("failed to read query file: %w", err)
		}
		queryText = string(content)
	}

	if queryText == "" {
		return listTables(cmd.OutOrStdout(), cfg, bindings)
	}

	translated := queryText
	if cfg.Dialect == config.DialectBigQuery {
		translated = dialect.NewTranslator(cfg.Dataset).Translate(queryText)
	}

	if cfg.ShowSQL {
		fmt.Fprintln(cmd.OutOrStdout(), "SQL sent to DuckDB:")
		fmt.Fprintln(cmd.OutOrStdout(), translated)
		fmt.Fprintln(cmd.OutOrStdout())
	}

	// One row past the display cap marks truncation for the renderer.
	res, err := query.NewExecutor(mgr).Run(ctx, translated, cfg.MaxRows+1)
	if err != nil {
		return fmt.Errorf("Query failed: %w", err)
	}

	return render.Render(cmd.OutOrStdout(), res, cfg.MaxRows)
}
