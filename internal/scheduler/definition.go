package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/notexe/fittrack/internal/config"
	"github.com/notexe/fittrack/internal/notify"
)

// Cadences of the recurring timers.
const (
	DailyPeriod  = 24 * time.Hour
	WeeklyPeriod = 7 * DailyPeriod
)

// ErrInvalidDefinition is returned by Start when a reminder definition is
// malformed. No timer is armed in that case.
var ErrInvalidDefinition = errors.New("invalid reminder definition")

// Definition describes one recurring reminder.
//
// A definition with Every > 0 fires every Every starting one period after
// Start, ignoring Hour and Minute. Otherwise it fires at Hour:Minute each
// day, or each week on Weekday when Weekday is set.
type Definition struct {
	Key     string
	Kind    notify.Kind
	Hour    int
	Minute  int
	Every   time.Duration
	Weekday *time.Weekday
}

// Period returns the re-arm cadence of the definition.
func (d Definition) Period() time.Duration {
	switch {
	case d.Every > 0:
		return d.Every
	case d.Weekday != nil:
		return WeeklyPeriod
	default:
		return DailyPeriod
	}
}

// NextFire returns the first occurrence of the definition's wall-clock time
// strictly after now, in now's location. An occurrence equal to now counts
// as already passed.
func (d Definition) NextFire(now time.Time) time.Time {
	if d.Every > 0 {
		return now.Add(d.Every)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, d.Minute, 0, 0, now.Location())
	if d.Weekday != nil {
		next = next.AddDate(0, 0, (int(*d.Weekday)-int(next.Weekday())+7)%7)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
		return next
	}

	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Validate reports the first problem with the definition.
func (d Definition) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidDefinition)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidDefinition, d.Key, d.Kind)
	}
	if d.Every < 0 {
		return fmt.Errorf("%w: %s: negative interval %s", ErrInvalidDefinition, d.Key, d.Every)
	}
	if d.Every > 0 {
		return nil
	}
	if d.Hour < 0 || d.Hour > 23 {
		return fmt.Errorf("%w: %s: hour %d out of range 0-23", ErrInvalidDefinition, d.Key, d.Hour)
	}
	if d.Minute < 0 || d.Minute > 59 {
		return fmt.Errorf("%w: %s: minute %d out of range 0-59", ErrInvalidDefinition, d.Key, d.Minute)
	}
	if d.Weekday != nil && (*d.Weekday < time.Sunday || *d.Weekday > time.Saturday) {
		return fmt.Errorf("%w: %s: invalid weekday %d", ErrInvalidDefinition, d.Key, *d.Weekday)
	}
	return nil
}

// ValidateAll checks every definition and rejects duplicate keys.
func ValidateAll(defs []Definition) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Key] {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidDefinition, d.Key)
		}
		seen[d.Key] = true
	}
	return nil
}

// Definitions converts the reminder configuration into definitions.
// Disabled reminders are left out.
func Definitions(cfg *config.RemindersConfig) []Definition {
	var defs []Definition

	add := func(key string, kind notify.Kind, at config.TimeOfDay) {
		if !at.Enabled {
			return
		}
		defs = append(defs, Definition{Key: key, Kind: kind, Hour: at.Hour, Minute: at.Minute})
	}

	add("morning", notify.KindMorning, cfg.Morning)
	add("afternoon", notify.KindAfternoon, cfg.Afternoon)
	add("evening", notify.KindEvening, cfg.Evening)

	if cfg.Water.Enabled {
		defs = append(defs, Definition{
			Key:   "water",
			Kind:  notify.KindWater,
			Every: time.Duration(cfg.Water.IntervalMinutes) * time.Minute,
		})
	}

	add("daily_report", notify.KindDailyReport, cfg.DailyReport)

	if cfg.WeeklyReport.Enabled {
		wd := cfg.WeeklyReport.Weekday()
		defs = append(defs, Definition{
			Key:     "weekly_report",
			Kind:    notify.KindWeeklyReport,
			Hour:    cfg.WeeklyReport.Hour,
			Minute:  cfg.WeeklyReport.Minute,
			Weekday: &wd,
		})
	}

	return defs
}
