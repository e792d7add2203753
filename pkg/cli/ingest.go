package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/duckbq/duckbq/pkg/config"
	"github.com/duckbq/duckbq/pkg/connection"
	"github.com/duckbq/duckbq/pkg/pipeline"
)

// timeRound trims load durations for display.
const timeRound = time.Millisecond

func newIngestCmd() *cobra.Command {
	var report bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load paginated JSON from a REST endpoint into DuckDB",
		Long: `ingest pulls a page-numbered JSON resource into a DuckDB table,
replacing whatever a previous run loaded. Every row is stamped with a
load id identifying the run. With --report it also answers the fixed
taxi analytics questions against the loaded table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, report)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.String("base-url", config.DefaultIngestBaseURL, "Paginated JSON endpoint")
	flags.String("table", config.DefaultIngestTable, "Destination table name")
	flags.String("db", config.DefaultIngestDB, "DuckDB database file (empty for in-memory)")
	flags.BoolVar(&report, "report", false, "Run the taxi analytics report after loading")

	return cmd
}

func runIngest(cmd *cobra.Command, report bool) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	db, err := sql.Open("duckdb", cfg.IngestDB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	mgr := connection.NewManager(db)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	p := pipeline.New(mgr, pipeline.Config{
		BaseURL: cfg.IngestBaseURL,
		Table:   cfg.IngestTable,
	}, nil, logger)

	info, err := p.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d rows (%d pages) into %s in %s [load id %s]\n",
		info.Rows, info.Pages, info.Table, info.Duration.Round(timeRound), info.LoadID)

	if !report {
		return nil
	}

	answers, err := pipeline.TaxiReport(ctx, mgr, cfg.IngestTable)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nQ1: Dataset date range: %s to %s\n", answers.StartDate, answers.EndDate)
	fmt.Fprintf(out, "Q2: Credit card trip proportion: %v%%\n", answers.CreditCardPct)
	fmt.Fprintf(out, "Q3: Total tips generated: $%v\n", answers.TotalTips)
	return nil
}
