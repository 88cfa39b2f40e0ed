package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/report"
	"github.com/notexe/fittrack/internal/tracker"
)

type sent struct {
	at time.Time
	n  notify.Notification
}

type recorder struct {
	mu    sync.Mutex
	clock Clock
	sent  []sent
	fail  func(n notify.Notification) error
}

func (r *recorder) Send(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	r.sent = append(r.sent, sent{at: r.clock.Now(), n: n})
	fail := r.fail
	r.mu.Unlock()

	if fail != nil {
		return fail(n)
	}
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *recorder) last() sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}

type fakeSource struct {
	profile *tracker.Profile
	records map[string]*tracker.DailyRecord
	err     error
}

func (f *fakeSource) ActiveProfile(context.Context) (*tracker.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return nil, fmt.Errorf("active profile: %w", tracker.ErrNotFound)
	}
	return f.profile, nil
}

func (f *fakeSource) DailyRecord(_ context.Context, _, date string) (*tracker.DailyRecord, error) {
	rec, ok := f.records[date]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", date, tracker.ErrNotFound)
	}
	return rec, nil
}

func newSource() *fakeSource {
	return &fakeSource{
		profile: &tracker.Profile{
			ID:             "p1",
			Name:           "Ann",
			Email:          "ann@example.com",
			Goal:           tracker.GoalCut,
			TargetCalories: 2000,
			WaterIntake:    2.5,
		},
		records: make(map[string]*tracker.DailyRecord),
	}
}

func newTestScheduler(now time.Time, src Source) (*Scheduler, *fakeClock, *recorder) {
	clock := newFakeClock(now)
	rec := &recorder{clock: clock}
	s := New(rec, src, WithClock(clock), WithLocation(time.UTC))
	return s, clock, rec
}

var morning = Definition{Key: "morning", Kind: notify.KindMorning, Hour: 7}

func TestStartAtSixFiresMorningAfterOneHour(t *testing.T) {
	s, clock, rec := newTestScheduler(at(2, 6, 0, 0), newSource())
	if err := s.Start([]Definition{morning}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	armed := s.Armed()
	if len(armed) != 1 {
		t.Fatalf("expected one armed timer, got %v", armed)
	}
	if delay := armed[0].NextFireAt.Sub(at(2, 6, 0, 0)); delay.Milliseconds() != 3600000 {
		t.Fatalf("initial delay = %d ms, want 3600000", delay.Milliseconds())
	}
	if armed[0].Recurring {
		t.Fatal("initial timer should be one-shot")
	}

	clock.Advance(time.Hour - time.Millisecond)
	if rec.count() != 0 {
		t.Fatal("dispatched before fire time")
	}

	clock.Advance(time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected one dispatch at 07:00, got %d", rec.count())
	}
	first := rec.last()
	if !first.at.Equal(at(2, 7, 0, 0)) || first.n.Kind != notify.KindMorning || first.n.Recipient.Email != "ann@example.com" {
		t.Fatalf("unexpected first dispatch %+v", first)
	}

	armed = s.Armed()
	if len(armed) != 1 || !armed[0].Recurring || armed[0].Period.Milliseconds() != 86400000 {
		t.Fatalf("expected one recurring 24h timer, got %+v", armed)
	}

	clock.Advance(24*time.Hour - time.Millisecond)
	if rec.count() != 1 {
		t.Fatal("second dispatch came early")
	}
	clock.Advance(time.Millisecond)
	if rec.count() != 2 {
		t.Fatalf("expected second dispatch 24h later, got %d", rec.count())
	}
	if got := rec.last().at.Sub(first.at); got != 24*time.Hour {
		t.Fatalf("dispatch interval = %s", got)
	}
}

func TestStartAtBoundaryRollsToTomorrow(t *testing.T) {
	s, clock, rec := newTestScheduler(at(2, 7, 0, 0), newSource())
	if err := s.Start([]Definition{morning}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if delay := s.Armed()[0].NextFireAt.Sub(at(2, 7, 0, 0)); delay != 24*time.Hour {
		t.Fatalf("boundary delay = %s, want 24h", delay)
	}

	clock.Advance(time.Hour)
	if rec.count() != 0 {
		t.Fatal("fired at the boundary instant")
	}
}

func TestWaterReminderIsHourly(t *testing.T) {
	water := Definition{Key: "water", Kind: notify.KindWater, Every: time.Hour}
	s, clock, rec := newTestScheduler(at(2, 6, 20, 0), newSource())
	if err := s.Start([]Definition{water}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	armed := s.Armed()[0]
	if !armed.NextFireAt.Equal(at(2, 7, 20, 0)) || armed.Period.Milliseconds() != 3600000 {
		t.Fatalf("unexpected water timer %+v", armed)
	}

	clock.Advance(3 * time.Hour)
	if rec.count() != 3 {
		t.Fatalf("expected 3 hourly dispatches, got %d", rec.count())
	}
	if !rec.last().at.Equal(at(2, 9, 20, 0)) {
		t.Fatalf("last water dispatch at %s", rec.last().at)
	}
}

func TestOneTimerPerKey(t *testing.T) {
	defs := []Definition{
		morning,
		{Key: "afternoon", Kind: notify.KindAfternoon, Hour: 12},
		{Key: "evening", Kind: notify.KindEvening, Hour: 20},
		{Key: "water", Kind: notify.KindWater, Every: time.Hour},
	}
	s, clock, rec := newTestScheduler(at(2, 6, 0, 0), newSource())
	if err := s.Start(defs); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	for i := 0; i < 3; i++ {
		clock.Advance(24 * time.Hour)
		if n := len(s.Armed()); n != len(defs) {
			t.Fatalf("day %d: %d armed timers, want %d", i, n, len(defs))
		}
		if n := clock.pending(); n != len(defs) {
			t.Fatalf("day %d: %d pending clock timers, want %d", i, n, len(defs))
		}
	}

	// 3 days of 3 clock reminders plus 72 hourly water reminders.
	if rec.count() != 9+72 {
		t.Fatalf("dispatch count = %d", rec.count())
	}
}

func TestStopBeforeFiring(t *testing.T) {
	s, clock, rec := newTestScheduler(at(2, 6, 0, 0), newSource())
	if err := s.Start([]Definition{morning, {Key: "water", Kind: notify.KindWater, Every: time.Hour}}); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.Stop()
	s.Stop()

	clock.Advance(72 * time.Hour)
	if rec.count() != 0 {
		t.Fatalf("dispatched %d times after stop", rec.count())
	}
	if len(s.Armed()) != 0 || clock.pending() != 0 {
		t.Fatal("timers left after stop")
	}
	if err := s.Start([]Definition{morning}); !errors.Is(err, ErrStopped) {
		t.Fatalf("start after stop = %v, want ErrStopped", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	s, _, _ := newTestScheduler(at(2, 6, 0, 0), newSource())
	s.Stop()
	s.Stop()
}

func TestStartTwice(t *testing.T) {
	s, _, _ := newTestScheduler(at(2, 6, 0, 0), newSource())
	defer s.Stop()
	if err := s.Start([]Definition{morning}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start([]Definition{morning}); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second start = %v, want ErrAlreadyStarted", err)
	}
}

func TestInvalidDefinitionArmsNothing(t *testing.T) {
	s, clock, _ := newTestScheduler(at(2, 6, 0, 0), newSource())
	defer s.Stop()

	err := s.Start([]Definition{morning, {Key: "late", Kind: notify.KindEvening, Hour: 25}})
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("start = %v, want ErrInvalidDefinition", err)
	}
	if len(s.Armed()) != 0 || clock.pending() != 0 {
		t.Fatal("timers armed despite invalid definition")
	}

	if err := s.Start([]Definition{morning}); err != nil {
		t.Fatalf("start after config error: %v", err)
	}
}

func TestStopDuringDispatch(t *testing.T) {
	s, clock, rec := newTestScheduler(at(2, 6, 0, 0), newSource())
	rec.fail = func(notify.Notification) error {
		s.Stop()
		return nil
	}
	if err := s.Start([]Definition{morning}); err != nil {
		t.Fatalf("start: %v", err)
	}

	clock.Advance(time.Hour)
	if rec.count() != 1 {
		t.Fatalf("in-flight dispatch should complete, got %d", rec.count())
	}

	clock.Advance(48 * time.Hour)
	if rec.count() != 1 || len(s.Armed()) != 0 {
		t.Fatal("re-armed after stop")
	}
}

func TestDailyReportPayload(t *testing.T) {
	src := newSource()
	src.records["2026-03-02"] = &tracker.DailyRecord{
		Date:             "2026-03-02",
		CaloriesConsumed: 1800,
		CaloriesBurned:   300,
		WaterDrunk:       2.0,
	}

	s, clock, rec := newTestScheduler(at(2, 21, 0, 0), src)
	if err := s.Start([]Definition{{Key: "daily_report", Kind: notify.KindDailyReport, Hour: 22}}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	clock.Advance(time.Hour)
	if rec.count() != 1 {
		t.Fatalf("expected one report, got %d", rec.count())
	}

	n := rec.last().n
	d, ok := n.Data.(*report.Daily)
	if !ok {
		t.Fatalf("unexpected payload %T", n.Data)
	}
	if d.NetCalories != 1500 || d.CalorieProgress != 90 || d.WaterProgress != 80 {
		t.Fatalf("payload = net %d, calories %d%%, water %d%%", d.NetCalories, d.CalorieProgress, d.WaterProgress)
	}
	if d.ISODate != "2026-03-02" || n.Recipient.Name != "Ann" {
		t.Fatalf("unexpected report %+v", n)
	}

	// No record for the 3rd: the report is skipped, the schedule is not.
	clock.Advance(24 * time.Hour)
	if rec.count() != 1 {
		t.Fatal("report sent without a daily record")
	}
	if len(s.Armed()) != 1 {
		t.Fatal("report timer lost after skip")
	}
}

func TestDailyReportFindsEntriesLoggedInSameZone(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	store, err := tracker.NewStore(filepath.Join(t.TempDir(), "fittrack.db"), tracker.WithLocation(est))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	p, err := store.CreateProfile(ctx, tracker.ProfileInput{
		Name: "Ann", Email: "ann@example.com", Age: 30, Height: 170, Weight: 70,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	// 21:00 on March 2nd in New York, already March 3rd in UTC.
	clock := newFakeClock(time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC))
	date := store.Date(clock.Now())
	if date == clock.Now().UTC().Format(tracker.DateLayout) {
		t.Fatalf("store date %s should differ from the UTC date", date)
	}
	if _, err := store.AddFood(ctx, p.ID, date, tracker.FoodEntry{Name: "Pasta", Calories: 600}); err != nil {
		t.Fatalf("add food: %v", err)
	}

	rec := &recorder{clock: clock}
	s := New(rec, store, WithClock(clock), WithLocation(est))
	if err := s.Start([]Definition{{Key: "daily_report", Kind: notify.KindDailyReport, Hour: 22}}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	clock.Advance(time.Hour)
	if rec.count() != 1 {
		t.Fatalf("expected the 22:00 report, got %d dispatches", rec.count())
	}
	d := rec.last().n.Data.(*report.Daily)
	if d.ISODate != "2026-03-02" || d.CaloriesConsumed != 600 {
		t.Fatalf("report read the wrong day: %s with %d kcal", d.ISODate, d.CaloriesConsumed)
	}
}

func TestWeeklyReportPayload(t *testing.T) {
	src := newSource()
	src.records["2026-03-02"] = &tracker.DailyRecord{Date: "2026-03-02", CaloriesConsumed: 1400, WaterDrunk: 2}
	src.records["2026-03-08"] = &tracker.DailyRecord{Date: "2026-03-08", CaloriesConsumed: 2100, WaterDrunk: 3}

	def := Definition{Key: "weekly_report", Kind: notify.KindWeeklyReport, Hour: 21, Weekday: weekday(time.Sunday)}
	s, clock, rec := newTestScheduler(at(4, 10, 0, 0), src)
	if err := s.Start([]Definition{def}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	clock.Advance(4*24*time.Hour + 11*time.Hour)
	if rec.count() != 1 {
		t.Fatalf("expected weekly report on Sunday, got %d", rec.count())
	}
	if !rec.last().at.Equal(at(8, 21, 0, 0)) {
		t.Fatalf("weekly report at %s", rec.last().at)
	}

	w, ok := rec.last().n.Data.(*report.Weekly)
	if !ok {
		t.Fatalf("unexpected payload %T", rec.last().n.Data)
	}
	if len(w.Days) != 7 || w.From != "2026-03-02" || w.To != "2026-03-08" {
		t.Fatalf("unexpected week %s..%s (%d days)", w.From, w.To, len(w.Days))
	}
	if w.TotalCalories != 3500 || w.Averages.Calories != 500 {
		t.Fatalf("unexpected totals %d / %v", w.TotalCalories, w.Averages.Calories)
	}

	if next := s.Armed()[0]; !next.NextFireAt.Equal(at(15, 21, 0, 0)) || next.Period != WeeklyPeriod {
		t.Fatalf("unexpected next weekly timer %+v", next)
	}
}

func TestDispatchFailureKeepsSchedule(t *testing.T) {
	s, clock, rec := newTestScheduler(at(2, 6, 0, 0), newSource())
	calls := 0
	rec.fail = func(notify.Notification) error {
		calls++
		if calls == 1 {
			return errors.New("connection refused")
		}
		return nil
	}
	if err := s.Start([]Definition{morning}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	clock.Advance(time.Hour)
	clock.Advance(24 * time.Hour)
	if rec.count() != 2 {
		t.Fatalf("expected the next firing after a failure, got %d", rec.count())
	}
	if !rec.last().at.Equal(at(3, 7, 0, 0)) {
		t.Fatalf("second firing at %s", rec.last().at)
	}
}

func TestDispatchPanicKeepsSchedule(t *testing.T) {
	s, clock, rec := newTestScheduler(at(2, 6, 0, 0), newSource())
	rec.fail = func(notify.Notification) error { panic("boom") }
	if err := s.Start([]Definition{morning}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	clock.Advance(49 * time.Hour)
	if rec.count() != 3 {
		t.Fatalf("expected 3 attempts despite panics, got %d", rec.count())
	}
}

func TestStoreMissSkipsSilently(t *testing.T) {
	cases := []struct {
		name string
		src  *fakeSource
	}{
		{"no profile", &fakeSource{}},
		{"no email", &fakeSource{profile: &tracker.Profile{ID: "p1", Name: "Ann"}}},
		{"store error", &fakeSource{err: errors.New("database is locked")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, clock, rec := newTestScheduler(at(2, 6, 0, 0), tc.src)
			if err := s.Start([]Definition{morning}); err != nil {
				t.Fatalf("start: %v", err)
			}
			defer s.Stop()

			clock.Advance(time.Hour)
			if rec.count() != 0 {
				t.Fatal("dispatched without a recipient")
			}
			if a := s.Armed(); len(a) != 1 || !a[0].Recurring {
				t.Fatalf("schedule not kept: %+v", a)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	clock := newFakeClock(at(2, 3, 0, 0)) // 06:00 in UTC+3
	rec := &recorder{clock: clock}
	s := New(rec, newSource(), WithClock(clock), WithLocation(loc))
	if err := s.Start([]Definition{morning}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if delay := s.Armed()[0].NextFireAt.Sub(at(2, 3, 0, 0)); delay != time.Hour {
		t.Fatalf("delay in UTC+3 = %s, want 1h", delay)
	}
}

func TestWait(t *testing.T) {
	s, _, _ := newTestScheduler(at(2, 6, 0, 0), newSource())
	s.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestNilSourceSkipsEveryKind(t *testing.T) {
	clock := newFakeClock(at(2, 6, 0, 0))
	rec := &recorder{clock: clock}
	s := New(rec, nil, WithClock(clock), WithLocation(time.UTC))
	defs := []Definition{morning, {Key: "water", Kind: notify.KindWater, Every: time.Hour}}
	if err := s.Start(defs); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	clock.Advance(2 * time.Hour)
	if rec.count() != 0 {
		t.Fatalf("dispatched %d times without a recipient source", rec.count())
	}
	if len(s.Armed()) != len(defs) {
		t.Fatal("schedule not kept without a source")
	}
}
