package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timmy/batchpub/internal/app"
	"github.com/timmy/batchpub/internal/config"
	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/report"
)

var showRows bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every row of the sheet once",
	Example: `  publish run --sheet uploads.xlsx --media-dir ./videos --simulate
  publish run --sheet s3://plans/uploads.xlsx --schedule interval --start 2025-03-01T10:00:00Z --interval 30
  publish run --schedule daily --daily-start 2025-03-01 --daily-time 09:00 --per-day 3 --spacing 45`,
	RunE: runPublish,
}

// Flags override the config key of the same meaning.
var runFlagKeys = map[string]string{
	"sheet":          "sheet.path",
	"sheet-name":     "sheet.name",
	"media-dir":      "media.dir",
	"thumbnails-dir": "media.thumbnails_dir",
	"simulate":       "run.simulate",
	"skip-completed": "run.skip_completed",
	"schedule":       "schedule.mode",
	"start":          "schedule.start",
	"interval":       "schedule.interval_minutes",
	"cron":           "schedule.cron",
	"daily-start":    "schedule.daily.start_date",
	"daily-time":     "schedule.daily.time",
	"per-day":        "schedule.daily.per_day",
	"spacing":        "schedule.daily.spacing_minutes",
	"timezone":       "schedule.timezone",
	"privacy":        "publisher.privacy",
	"log-level":      "log.level",
}

func init() {
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&showRows, "rows", false, "Print one line per processed row")
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("sheet", "", "Sheet path (.xlsx, .csv, or s3://bucket/key)")
	f.String("sheet-name", "", "Worksheet name (default: first sheet)")
	f.String("media-dir", "", "Folder containing media files")
	f.String("thumbnails-dir", "", "Folder containing per-identifier thumbnails")
	f.Bool("simulate", false, "Do not upload, only record what would be published")
	f.Bool("skip-completed", false, "Skip rows whose status already records an upload")
	f.String("schedule", "", "Schedule mode: immediate, interval, daily, cron")
	f.String("start", "", "First publish time for interval schedules")
	f.Float64("interval", 0, "Minutes between scheduled publish times")
	f.String("cron", "", "Cron expression for cron schedules")
	f.String("daily-start", "", "First day of a daily schedule (2006-01-02)")
	f.String("daily-time", "", "Time of the first daily publish (15:04)")
	f.Int("per-day", 0, "Publishes per day for daily schedules")
	f.Float64("spacing", 0, "Minutes between publishes within a day")
	f.String("timezone", "", "IANA timezone for schedule times")
	f.String("privacy", "", "Privacy of uploaded videos")
	f.String("log-level", "", "Log level: debug, info, warn, error")
}

func loadConfig(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, error) {
	v, err := config.New(configPath)
	if err != nil {
		return nil, err
	}
	if err := bindFlags(v, cmd, flagKeys); err != nil {
		return nil, err
	}
	return config.Decode(v)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, flagKeys map[string]string) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func runPublish(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, runFlagKeys)
	if err != nil {
		return err
	}
	log := app.InitLogger(&cfg.Log, "batchpub-cli")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("Failed to initialize")
		return err
	}
	defer a.Close()

	opts, err := a.RunOptions(time.Now())
	if err != nil {
		log.WithError(err).Error("Invalid schedule")
		return err
	}
	if opts.SheetPath == "" {
		return fmt.Errorf("no sheet given: set sheet.path or pass --sheet")
	}

	stats, err := a.Service.Run(ctx, opts)
	if stats != nil {
		fmt.Fprintln(cmd.OutOrStdout(), report.Summary(stats))
		if showRows {
			fmt.Fprintln(cmd.OutOrStdout(), report.Rows(stats.Rows))
		}
	}
	if err != nil {
		log.WithError(err).Error("Run failed")
		return err
	}
	return nil
}
