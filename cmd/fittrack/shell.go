package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/repl"
	"github.com/notexe/fittrack/internal/report"
	"github.com/notexe/fittrack/internal/tracker"
	"github.com/notexe/fittrack/internal/ui"
)

func shell(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := repl.NewREPL(store, welcomeDispatcher(cfg), cfg.UI.ColoredOutput && !c.Bool("no-color"))
	if err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	go func() {
		<-sigChan
		r.Stop()
		cancel()
	}()

	return r.Start(ctx)
}

// printReport renders the report of the active profile to stdout and
// optionally dispatches it.
func printReport(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	day := time.Now().In(loc)
	if d := c.String("date"); d != "" {
		if day, err = time.ParseInLocation(tracker.DateLayout, d, loc); err != nil {
			return fmt.Errorf("invalid date %q: %w", d, err)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	n, md, err := buildReport(ctx, store, day, c.Bool("weekly"))
	if err != nil {
		return err
	}

	f := ui.NewFormatter(cfg.UI.ColoredOutput && !c.Bool("no-color"))
	fmt.Println(f.RenderMarkdown(md))

	if !c.Bool("send") {
		return nil
	}
	if n.Recipient.Email == "" {
		return fmt.Errorf("profile %s has no email address", n.Recipient.Name)
	}

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, seconds(cfg.Dispatch.Timeout))
	defer cancel()
	if err := dispatcher.Send(ctx, n); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	fmt.Println(f.FormatSuccess("Report sent to " + n.Recipient.Email))
	return nil
}

// buildReport loads the active profile and builds the daily report for day,
// or the weekly summary ending on day.
func buildReport(ctx context.Context, store *tracker.Store, day time.Time, weekly bool) (notify.Notification, string, error) {
	var n notify.Notification

	p, err := store.ActiveProfile(ctx)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			return n, "", fmt.Errorf("no active profile, create one with the shell first")
		}
		return n, "", err
	}
	n.Recipient = notify.Recipient{Email: p.Email, Name: p.Name}

	if weekly {
		days, err := tracker.LastDays(ctx, store, p.ID, day, 7)
		if err != nil {
			return n, "", err
		}
		w := report.BuildWeekly(p, days)
		n.Kind, n.Data = notify.KindWeeklyReport, w
		return n, report.WeeklyMarkdown(w), nil
	}

	date := day.Format(tracker.DateLayout)
	rec, err := store.DailyRecord(ctx, p.ID, date)
	if err != nil {
		if !errors.Is(err, tracker.ErrNotFound) {
			return n, "", err
		}
		rec = &tracker.DailyRecord{Date: date}
	}
	d := report.BuildDaily(p, rec)
	n.Kind, n.Data = notify.KindDailyReport, d
	return n, report.DailyMarkdown(p.Name, d), nil
}
