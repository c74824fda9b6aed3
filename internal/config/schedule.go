package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/batchpub/internal/schedule"
)

// ErrInvalidSchedule is returned by Build for unusable schedule settings.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

type ScheduleConfig struct {
	Mode            string      `mapstructure:"mode"` // immediate, interval, daily, cron
	Start           string      `mapstructure:"start"`
	IntervalMinutes float64     `mapstructure:"interval_minutes"`
	Daily           DailyConfig `mapstructure:"daily"`
	Cron            string      `mapstructure:"cron"`
	Timezone        string      `mapstructure:"timezone"` // IANA name, empty for local time
}

type DailyConfig struct {
	StartDate      string  `mapstructure:"start_date"` // 2006-01-02
	Time           string  `mapstructure:"time"`       // 15:04
	PerDay         int     `mapstructure:"per_day"`
	SpacingMinutes float64 `mapstructure:"spacing_minutes"`
}

// Start time layouts accepted besides RFC 3339; read in the configured timezone.
var startLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// Build returns the validated schedule.
// Parameters:
//   - now: clock used when a cron schedule has no explicit start.
//
// Returns:
//   - schedule.Schedule: validated scheduling policy.
//   - error: wraps ErrInvalidSchedule.
func (c ScheduleConfig) Build(now time.Time) (schedule.Schedule, error) {
	loc, err := c.location()
	if err != nil {
		return nil, err
	}

	var s schedule.Schedule
	switch schedule.Mode(strings.ToLower(strings.TrimSpace(c.Mode))) {
	case "", schedule.ModeImmediate:
		s = schedule.Immediate{}
	case schedule.ModeFixedInterval:
		start, err := c.startAt(loc)
		if err != nil {
			return nil, err
		}
		s = schedule.FixedInterval{StartAt: start, IntervalMinutes: c.IntervalMinutes}
	case schedule.ModeDailyBatches:
		d, err := time.ParseInLocation("2006-01-02", c.Daily.StartDate, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: daily start_date %q: %v", ErrInvalidSchedule, c.Daily.StartDate, err)
		}
		tod, err := time.Parse("15:04", c.Daily.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: daily time %q: %v", ErrInvalidSchedule, c.Daily.Time, err)
		}
		s = schedule.DailyBatches{
			StartDate:      schedule.Date{Year: d.Year(), Month: d.Month(), Day: d.Day()},
			Hour:           tod.Hour(),
			Minute:         tod.Minute(),
			PerDay:         c.Daily.PerDay,
			SpacingMinutes: c.Daily.SpacingMinutes,
			Location:       loc,
		}
	case schedule.ModeCron:
		start := now.In(loc)
		if strings.TrimSpace(c.Start) != "" {
			if start, err = c.startAt(loc); err != nil {
				return nil, err
			}
		}
		cs, err := schedule.NewCronSlots(start, c.Cron)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}
		s = cs
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidSchedule, c.Mode)
	}

	if err := schedule.Validate(s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	return s, nil
}

func (c ScheduleConfig) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidSchedule, c.Timezone, err)
	}
	return loc, nil
}

func (c ScheduleConfig) startAt(loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(c.Start)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: schedule.start is required for mode %q", ErrInvalidSchedule, c.Mode)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse start %q", ErrInvalidSchedule, raw)
}
