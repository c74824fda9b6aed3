package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timmy/batchpub/internal/app"
	"github.com/timmy/batchpub/internal/domain"
	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/report"
)

var (
	historyLimit  int
	historyOffset int
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded runs, or the rows of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  showHistory,
}

var historyFlagKeys = map[string]string{
	"database-path": "database.path",
	"database-dsn":  "database.dsn",
}

func init() {
	f := historyCmd.Flags()
	f.IntVar(&historyLimit, "limit", 20, "Number of runs to show")
	f.IntVar(&historyOffset, "offset", 0, "Number of runs to skip")
	f.String("database-path", "", "SQLite history database path")
	f.String("database-dsn", "", "History database DSN")
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, historyFlagKeys)
	if err != nil {
		return err
	}
	app.InitLogger(&cfg.Log, "batchpub-cli")
	defer logger.Sync()

	// Reading history only makes sense against the database, enabled or not.
	cfg.Database.Enabled = true
	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.History == nil {
		return errors.New("run history is not available")
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		run, err := a.History.GetByID(ctx, args[0])
		if err != nil {
			return err
		}
		rows, err := a.History.ListRowResults(ctx, run.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, report.History([]domain.PublishRun{*run}))
		fmt.Fprintln(out, report.RecordedRows(rows))
		return nil
	}

	runs, err := a.History.List(ctx, historyLimit, historyOffset)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, report.History(runs))
	return nil
}
