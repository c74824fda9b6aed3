package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/timmy/batchpub/internal/schedule"
	"github.com/timmy/batchpub/internal/sheet"
)

const sampleYAML = `
sheet:
  path: ./uploads.xlsx
  name: Videos
  columns:
    identifier: clip
media:
  dir: /srv/media
  extensions: [".mp4", ".mov"]
schedule:
  mode: interval
  start: "2025-01-01T00:00:00Z"
  interval_minutes: 10
publisher:
  base_url: https://publish.example.com/api
  timeout: 30s
run:
  simulate: true
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("PUBLISHER_API_KEY", "from-env")
	t.Setenv("RUN_SKIP_COMPLETED", "true")

	cfg, err := Load(writeConfig(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sheet.Path != "./uploads.xlsx" || cfg.Sheet.Name != "Videos" {
		t.Errorf("sheet = %+v", cfg.Sheet)
	}
	if cfg.Media.Dir != "/srv/media" || len(cfg.Media.Extensions) != 2 {
		t.Errorf("media = %+v", cfg.Media)
	}
	if cfg.Publisher.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Publisher.Timeout)
	}
	if cfg.Publisher.RetryWait != 2*time.Second || cfg.Publisher.RetryCount != 3 {
		t.Errorf("retry defaults not applied: %+v", cfg.Publisher)
	}
	if cfg.Publisher.APIKey != "from-env" {
		t.Errorf("api key = %q, want env override", cfg.Publisher.APIKey)
	}
	if !cfg.Run.Simulate || !cfg.Run.SkipCompleted {
		t.Errorf("run = %+v", cfg.Run)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Server.Port != 8080 || cfg.Log.Level != "info" {
		t.Errorf("defaults not applied: db=%+v server=%+v log=%+v", cfg.Database, cfg.Server, cfg.Log)
	}
	if cfg.Server.CORS.AllowAllOrigins || len(cfg.Server.CORS.AllowedOrigins) != 0 {
		t.Errorf("cors should default closed: %+v", cfg.Server.CORS)
	}

	labels := cfg.Sheet.Labels()
	if labels.Columns[sheet.FieldIdentifier] != "clip" {
		t.Errorf("identifier label = %q", labels.Columns[sheet.FieldIdentifier])
	}
	if labels.Columns[sheet.FieldStatus] != "upload_status" {
		t.Errorf("status label = %q", labels.Columns[sheet.FieldStatus])
	}
	if len(labels.IdentifierFallbacks) != 2 {
		t.Errorf("fallbacks = %v", labels.IdentifierFallbacks)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestScheduleConfig_Build(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cfg      ScheduleConfig
		wantMode schedule.Mode
		wantErr  bool
	}{
		{name: "default immediate", cfg: ScheduleConfig{}, wantMode: schedule.ModeImmediate},
		{
			name:     "interval rfc3339",
			cfg:      ScheduleConfig{Mode: "interval", Start: "2025-01-01T00:00:00Z", IntervalMinutes: 10},
			wantMode: schedule.ModeFixedInterval,
		},
		{
			name:     "interval local layout",
			cfg:      ScheduleConfig{Mode: "Interval", Start: "2025-01-01 08:00", Timezone: "Asia/Shanghai"},
			wantMode: schedule.ModeFixedInterval,
		},
		{
			name:     "daily",
			cfg:      ScheduleConfig{Mode: "daily", Daily: DailyConfig{StartDate: "2025-01-01", Time: "09:30", PerDay: 3, SpacingMinutes: 60}},
			wantMode: schedule.ModeDailyBatches,
		},
		{
			name:     "cron without start uses now",
			cfg:      ScheduleConfig{Mode: "cron", Cron: "0 9 * * *"},
			wantMode: schedule.ModeCron,
		},
		{name: "interval missing start", cfg: ScheduleConfig{Mode: "interval", IntervalMinutes: 5}, wantErr: true},
		{name: "negative interval", cfg: ScheduleConfig{Mode: "interval", Start: "2025-01-01T00:00:00Z", IntervalMinutes: -1}, wantErr: true},
		{name: "daily zero per day", cfg: ScheduleConfig{Mode: "daily", Daily: DailyConfig{StartDate: "2025-01-01", Time: "09:00"}}, wantErr: true},
		{name: "daily bad time", cfg: ScheduleConfig{Mode: "daily", Daily: DailyConfig{StartDate: "2025-01-01", Time: "25:00", PerDay: 1}}, wantErr: true},
		{name: "bad cron", cfg: ScheduleConfig{Mode: "cron", Cron: "every day"}, wantErr: true},
		{name: "bad timezone", cfg: ScheduleConfig{Mode: "immediate", Timezone: "Mars/Base"}, wantErr: true},
		{name: "unknown mode", cfg: ScheduleConfig{Mode: "weekly"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.cfg.Build(now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSchedule) {
					t.Fatalf("expected ErrInvalidSchedule, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if s.Mode() != tt.wantMode {
				t.Errorf("mode = %s, want %s", s.Mode(), tt.wantMode)
			}
		})
	}
}

func TestScheduleConfig_BuildDailyValues(t *testing.T) {
	cfg := ScheduleConfig{
		Mode:     "daily",
		Timezone: "UTC",
		Daily:    DailyConfig{StartDate: "2025-01-31", Time: "09:30", PerDay: 2, SpacingMinutes: 15},
	}
	s, err := cfg.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	at, ok := schedule.PublishAt(3, s)
	want := time.Date(2025, 2, 1, 9, 45, 0, 0, time.UTC)
	if !ok || !at.Equal(want) {
		t.Errorf("slot 3 = %v, want %v", at, want)
	}
}

func TestScheduleConfig_BuildInterpretsLocalStart(t *testing.T) {
	cfg := ScheduleConfig{Mode: "interval", Start: "2025-01-01 08:00", Timezone: "Asia/Shanghai", IntervalMinutes: 10}
	s, err := cfg.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	at, _ := schedule.PublishAt(0, s)
	if want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC); !at.Equal(want) {
		t.Errorf("start = %v, want %v", at, want)
	}
}
