// Package scheduler arms recurring wall-clock reminders and hands each firing
// to a notification dispatcher.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/report"
	"github.com/notexe/fittrack/internal/tracker"
)

var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrStopped        = errors.New("scheduler stopped")
)

// DefaultDispatchTimeout bounds a single dispatch call.
const DefaultDispatchTimeout = 30 * time.Second

// Source is the read side of the profile store.
type Source interface {
	ActiveProfile(ctx context.Context) (*tracker.Profile, error)
	DailyRecord(ctx context.Context, profileID, date string) (*tracker.DailyRecord, error)
}

// ArmedTimer describes a live timer.
type ArmedTimer struct {
	Key        string
	Kind       notify.Kind
	NextFireAt time.Time
	Recurring  bool
	Period     time.Duration
}

type armedTimer struct {
	ArmedTimer
	def   Definition
	timer Timer
}

// Scheduler owns the timers of a set of reminder definitions.
type Scheduler struct {
	dispatcher notify.Dispatcher
	source     Source
	clock      Clock
	loc        *time.Location
	timeout    time.Duration

	mu      sync.Mutex
	timers  map[string]*armedTimer
	started bool
	stopped bool
	wg      sync.WaitGroup
}

type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLocation sets the time zone reminder times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithDispatchTimeout bounds each dispatch call.
func WithDispatchTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a scheduler. source supplies the recipient of every firing;
// with a nil source each firing is skipped. Dates are taken in the
// scheduler's location, which should match the store's.
func New(dispatcher notify.Dispatcher, source Source, opts ...Option) *Scheduler {
	s := &Scheduler{
		dispatcher: dispatcher,
		source:     source,
		clock:      realClock{},
		loc:        time.Local,
		timeout:    DefaultDispatchTimeout,
		timers:     make(map[string]*armedTimer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates defs and arms one timer per definition. Nothing is armed
// when any definition is invalid.
func (s *Scheduler) Start(defs []Definition) error {
	if err := ValidateAll(defs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	now := s.clock.Now().In(s.loc)
	for _, def := range defs {
		s.arm(def, def.NextFire(now), now, def.Every > 0)
	}

	log.Printf("[INFO] scheduler: started with %d reminders", len(defs))
	return nil
}

// arm replaces the timer for def.Key. Callers hold s.mu.
func (s *Scheduler) arm(def Definition, at, now time.Time, recurring bool) {
	if prev, ok := s.timers[def.Key]; ok {
		prev.timer.Stop()
	}

	entry := &armedTimer{
		ArmedTimer: ArmedTimer{
			Key:        def.Key,
			Kind:       def.Kind,
			NextFireAt: at,
			Recurring:  recurring,
			Period:     def.Period(),
		},
		def: def,
	}
	entry.timer = s.clock.AfterFunc(at.Sub(now), func() { s.fire(entry) })
	s.timers[def.Key] = entry

	log.Printf("[DEBUG] scheduler: armed %s for %s", def.Key, at.Format(time.RFC3339))
}

func (s *Scheduler) fire(entry *armedTimer) {
	s.mu.Lock()
	if s.stopped || s.timers[entry.Key] != entry {
		s.mu.Unlock()
		return
	}

	// Re-arm before dispatching so a failed or slow dispatch never costs
	// the next firing.
	now := s.clock.Now().In(s.loc)
	next := entry.NextFireAt.Add(entry.Period)
	if !next.After(now) {
		next = now.Add(entry.Period)
	}
	s.arm(entry.def, next, now, true)
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	s.dispatch(entry.def, now)
}

func (s *Scheduler) dispatch(def Definition, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] scheduler: %s dispatch panicked: %v", def.Key, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.build(ctx, def, now)
	if err != nil {
		if errors.Is(err, errSkip) {
			log.Printf("[DEBUG] scheduler: skipping %s: %v", def.Key, err)
			return
		}
		log.Printf("[ERROR] scheduler: %s: %v", def.Key, err)
		return
	}

	if err := s.dispatcher.Send(ctx, n); err != nil {
		log.Printf("[ERROR] scheduler: %s dispatch failed: %v", def.Key, err)
		return
	}

	log.Printf("[INFO] scheduler: dispatched %s to %s", def.Kind, n.Recipient.Email)
}

var errSkip = errors.New("nothing to send")

// build assembles the notification for a firing. Missing profiles, emails
// and records yield errSkip.
func (s *Scheduler) build(ctx context.Context, def Definition, now time.Time) (notify.Notification, error) {
	n := notify.Notification{Kind: def.Kind}

	if s.source == nil {
		return n, fmt.Errorf("%w: no profile store", errSkip)
	}

	p, err := s.source.ActiveProfile(ctx)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			return n, fmt.Errorf("%w: no active profile", errSkip)
		}
		return n, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil || p.Email == "" {
		return n, fmt.Errorf("%w: profile has no email", errSkip)
	}
	n.Recipient = notify.Recipient{Email: p.Email, Name: p.Name}

	switch def.Kind {
	case notify.KindDailyReport:
		date := now.Format(tracker.DateLayout)
		rec, err := s.source.DailyRecord(ctx, p.ID, date)
		if err != nil {
			if errors.Is(err, tracker.ErrNotFound) {
				return n, fmt.Errorf("%w: no record for %s", errSkip, date)
			}
			return n, fmt.Errorf("failed to load record for %s: %w", date, err)
		}
		n.Data = report.BuildDaily(p, rec)
	case notify.KindWeeklyReport:
		days, err := tracker.LastDays(ctx, s.source, p.ID, now, 7)
		if err != nil {
			return n, fmt.Errorf("failed to load last week: %w", err)
		}
		n.Data = report.BuildWeekly(p, days)
	}

	return n, nil
}

// Stop cancels every timer. No dispatch starts after Stop returns; dispatches
// already in flight run to completion. Stop may be called more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	for key, entry := range s.timers {
		entry.timer.Stop()
		delete(s.timers, key)
	}

	log.Println("[INFO] scheduler: stopped")
}

// Wait blocks until in-flight dispatches finish or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Armed returns a snapshot of the live timers ordered by key.
func (s *Scheduler) Armed() []ArmedTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ArmedTimer, 0, len(s.timers))
	for _, entry := range s.timers {
		out = append(out, entry.ArmedTimer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
