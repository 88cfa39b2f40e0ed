package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/notexe/fittrack/internal/config"
	"github.com/notexe/fittrack/internal/mailer"
	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/report"
	"github.com/notexe/fittrack/internal/tracker"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Dispatch.Channels = []string{config.ChannelEmail}
	cfg.Email.Mode = config.EmailModeEndpoint
	return cfg
}

func TestBuildDispatcher(t *testing.T) {
	cfg := loadDefaults(t)

	d, err := buildDispatcher(cfg)
	if err != nil {
		t.Fatalf("buildDispatcher: %v", err)
	}
	if _, ok := d.(*notify.EndpointSender); !ok {
		t.Fatalf("endpoint mode should use the endpoint sender, got %T", d)
	}

	cfg.Email.Mode = config.EmailModeDirect
	cfg.Dispatch.Channels = []string{config.ChannelEmail, config.ChannelTelegram}
	d, err = buildDispatcher(cfg)
	if err != nil {
		t.Fatalf("buildDispatcher: %v", err)
	}
	multi, ok := d.(notify.Multi)
	if !ok || len(multi) != 2 {
		t.Fatalf("expected two channels, got %#v", d)
	}
	if _, ok := multi[0].(*mailer.Service); !ok {
		t.Fatalf("direct mode should use the mailer service, got %T", multi[0])
	}

	cfg.Dispatch.Channels = []string{"pager"}
	if _, err := buildDispatcher(cfg); err == nil {
		t.Fatal("expected error for unknown channel")
	}
	cfg.Dispatch.Channels = nil
	if _, err := buildDispatcher(cfg); err == nil {
		t.Fatal("expected error without channels")
	}
}

func TestWelcomeDispatcher(t *testing.T) {
	cfg := loadDefaults(t)
	if welcomeDispatcher(cfg) == nil {
		t.Fatal("email channel should provide a welcome dispatcher")
	}
	cfg.Dispatch.Channels = []string{config.ChannelTelegram}
	if welcomeDispatcher(cfg) != nil {
		t.Fatal("welcome emails need the email channel")
	}
}

func TestBuildReport(t *testing.T) {
	store, err := tracker.NewStore(filepath.Join(t.TempDir(), "fittrack.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	day := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	if _, _, err := buildReport(ctx, store, day, false); err == nil {
		t.Fatal("expected error without an active profile")
	}

	p, err := store.CreateProfile(ctx, tracker.ProfileInput{
		Name: "Ann", Email: "ann@example.com", Age: 30, Height: 170, Weight: 70,
		Goal: tracker.GoalCut, ActivityLevel: tracker.ActivityModerate,
	})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if _, err := store.AddWater(ctx, p.ID, "2026-03-02", 1.5); err != nil {
		t.Fatalf("AddWater: %v", err)
	}

	n, md, err := buildReport(ctx, store, day, false)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if n.Kind != notify.KindDailyReport || n.Recipient.Email != "ann@example.com" {
		t.Fatalf("unexpected notification %+v", n)
	}
	if d := n.Data.(*report.Daily); d.WaterDrunk != 1.5 {
		t.Fatalf("water = %v, want 1.5", d.WaterDrunk)
	}
	if !strings.Contains(md, "Monday, March 2, 2026") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}

	// Days without a record still produce an empty report.
	n, _, err = buildReport(ctx, store, day.AddDate(0, 0, 1), false)
	if err != nil {
		t.Fatalf("empty day: %v", err)
	}
	if d := n.Data.(*report.Daily); d.CaloriesConsumed != 0 || d.ISODate != "2026-03-03" {
		t.Fatalf("unexpected empty report %+v", d)
	}

	n, _, err = buildReport(ctx, store, day, true)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	w := n.Data.(*report.Weekly)
	if n.Kind != notify.KindWeeklyReport || len(w.Days) != 7 || w.To != "2026-03-02" {
		t.Fatalf("unexpected weekly %+v", w)
	}
}
