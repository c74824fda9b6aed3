package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Mode names the scheduling policy of a run.
// Values include ModeImmediate, ModeFixedInterval, ModeDailyBatches, and ModeCron.
type Mode string

const (
	ModeImmediate     Mode = "immediate"
	ModeFixedInterval Mode = "interval"
	ModeDailyBatches  Mode = "daily"
	ModeCron          Mode = "cron"
)

// ErrInvalid is returned by Validate for configurations the planner cannot serve.
var ErrInvalid = errors.New("invalid schedule")

// Schedule is the scheduling policy decided once before a run starts.
// It is one of Immediate, FixedInterval, DailyBatches, or CronSlots.
type Schedule interface {
	// Mode returns the policy name.
	Mode() Mode
	// String returns a short human-readable description.
	String() string

	sealed()
}

// Immediate publishes every job as soon as it is uploaded.
type Immediate struct{}

// FixedInterval spaces slots IntervalMinutes apart starting at StartAt.
type FixedInterval struct {
	StartAt         time.Time
	IntervalMinutes float64
}

// Date is a calendar day without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DailyBatches publishes PerDay slots per day, the first at Hour:Minute local
// time and the rest SpacingMinutes apart.
type DailyBatches struct {
	StartDate      Date
	Hour           int
	Minute         int
	PerDay         int
	SpacingMinutes float64
	Location       *time.Location
}

// CronSlots assigns slot N to the (N+1)-th activation of Spec strictly after StartAt.
type CronSlots struct {
	StartAt time.Time
	Spec    string

	sched cron.Schedule
}

func (Immediate) Mode() Mode     { return ModeImmediate }
func (FixedInterval) Mode() Mode { return ModeFixedInterval }
func (DailyBatches) Mode() Mode  { return ModeDailyBatches }
func (CronSlots) Mode() Mode     { return ModeCron }

func (Immediate) sealed()     {}
func (FixedInterval) sealed() {}
func (DailyBatches) sealed()  {}
func (CronSlots) sealed()     {}

func (Immediate) String() string { return "immediate" }

func (s FixedInterval) String() string {
	return fmt.Sprintf("every %gm from %s", s.IntervalMinutes, s.StartAt.Format(time.RFC3339))
}

func (s DailyBatches) String() string {
	return fmt.Sprintf("%d/day at %02d:%02d spaced %gm from %04d-%02d-%02d",
		s.PerDay, s.Hour, s.Minute, s.SpacingMinutes, s.StartDate.Year, s.StartDate.Month, s.StartDate.Day)
}

func (s CronSlots) String() string {
	return fmt.Sprintf("cron %q after %s", s.Spec, s.StartAt.Format(time.RFC3339))
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewCronSlots parses spec with the standard five-field cron syntax.
func NewCronSlots(startAt time.Time, spec string) (CronSlots, error) {
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return CronSlots{}, fmt.Errorf("%w: cron spec %q: %v", ErrInvalid, spec, err)
	}
	return CronSlots{StartAt: startAt, Spec: spec, sched: sched}, nil
}

// Validate rejects configurations for which PublishAt is not total.
func Validate(s Schedule) error {
	switch v := s.(type) {
	case nil:
		return fmt.Errorf("%w: no schedule", ErrInvalid)
	case Immediate:
		return nil
	case FixedInterval:
		if v.StartAt.IsZero() {
			return fmt.Errorf("%w: interval schedule needs a start time", ErrInvalid)
		}
		if v.IntervalMinutes < 0 {
			return fmt.Errorf("%w: interval minutes must be >= 0, got %g", ErrInvalid, v.IntervalMinutes)
		}
	case DailyBatches:
		if v.StartDate.Year == 0 || v.StartDate.Month < time.January || v.StartDate.Month > time.December ||
			v.StartDate.Day < 1 || v.StartDate.Day > 31 {
			return fmt.Errorf("%w: daily schedule needs a valid start date", ErrInvalid)
		}
		if v.Hour < 0 || v.Hour > 23 || v.Minute < 0 || v.Minute > 59 {
			return fmt.Errorf("%w: time of day %02d:%02d out of range", ErrInvalid, v.Hour, v.Minute)
		}
		if v.PerDay <= 0 {
			return fmt.Errorf("%w: per day must be > 0, got %d", ErrInvalid, v.PerDay)
		}
		if v.SpacingMinutes < 0 {
			return fmt.Errorf("%w: spacing minutes must be >= 0, got %g", ErrInvalid, v.SpacingMinutes)
		}
	case CronSlots:
		if v.StartAt.IsZero() {
			return fmt.Errorf("%w: cron schedule needs a start time", ErrInvalid)
		}
		if v.sched == nil {
			return fmt.Errorf("%w: cron schedule %q was not built with NewCronSlots", ErrInvalid, v.Spec)
		}
		if v.sched.Next(v.StartAt).IsZero() {
			return fmt.Errorf("%w: cron spec %q never fires", ErrInvalid, v.Spec)
		}
	default:
		return fmt.Errorf("%w: unknown schedule %T", ErrInvalid, s)
	}
	return nil
}
