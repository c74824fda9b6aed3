package schedule

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// PublishAt computes the release time of the slot-th scheduled job.
// Parameters:
//   - slot: zero-based index among jobs that consumed a scheduled timestamp.
//   - s: validated schedule.
//
// Returns:
//   - time.Time: release instant.
//   - bool: false when the job is published immediately (no timestamp).
func PublishAt(slot int, s Schedule) (time.Time, bool) {
	if slot < 0 {
		slot = 0
	}

	switch v := s.(type) {
	case FixedInterval:
		return v.StartAt.Add(minutes(float64(slot) * v.IntervalMinutes)), true
	case DailyBatches:
		dayOffset := slot / v.PerDay
		indexInDay := slot % v.PerDay
		base := v.base()
		return base.Add(time.Duration(dayOffset)*day + minutes(float64(indexInDay)*v.SpacingMinutes)), true
	case CronSlots:
		t := v.StartAt
		for i := 0; i <= slot; i++ {
			t = v.sched.Next(t)
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// base is the first slot of the first day in wall-clock time of Location.
func (s DailyBatches) base() time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Date(s.StartDate.Year, s.StartDate.Month, s.StartDate.Day, s.Hour, s.Minute, 0, 0, loc)
}

// minutes converts a whole product in minutes once, so repeated calls never accumulate drift.
func minutes(m float64) time.Duration {
	return time.Duration(math.Round(m * float64(time.Minute)))
}
