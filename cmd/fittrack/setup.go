package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli"

	"github.com/notexe/fittrack/internal/config"
	"github.com/notexe/fittrack/internal/logging"
	"github.com/notexe/fittrack/internal/mailer"
	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/push"
	"github.com/notexe/fittrack/internal/tracker"
)

// loadConfig loads and validates the configuration and installs the log
// filter.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if lvl := c.GlobalString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg.Log.Level, os.Stderr)
	return cfg, nil
}

// openStore opens the store with days counted in the reminder time zone, so
// entries land on the day the scheduler reports on.
func openStore(cfg *config.Config) (*tracker.Store, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return tracker.NewStore(cfg.Store.Path, tracker.WithLocation(loc))
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// emailDispatcher returns the email channel for the configured mode.
func emailDispatcher(cfg *config.Config) notify.Dispatcher {
	if cfg.Email.Mode == config.EmailModeDirect {
		return mailerService(cfg)
	}
	return notify.NewEndpointSender(cfg.Email.EndpointURL, seconds(cfg.Email.Timeout))
}

func mailerService(cfg *config.Config) *mailer.Service {
	provider := mailer.NewResend(cfg.Resend.BaseURL, cfg.Resend.APIKey, seconds(cfg.Resend.Timeout))
	return mailer.NewService(provider, cfg.Resend.From)
}

// buildDispatcher combines the configured channels.
func buildDispatcher(cfg *config.Config) (notify.Dispatcher, error) {
	var channels notify.Multi
	for _, ch := range cfg.Dispatch.Channels {
		switch ch {
		case config.ChannelEmail:
			channels = append(channels, emailDispatcher(cfg))
		case config.ChannelTelegram:
			channels = append(channels, push.NewTelegram("", cfg.Telegram.BotToken, cfg.Telegram.ChatID))
		case config.ChannelDesktop:
			d, err := push.NewDesktop()
			if err != nil {
				return nil, err
			}
			channels = append(channels, d)
		default:
			return nil, fmt.Errorf("unknown dispatch channel: %s", ch)
		}
	}

	switch len(channels) {
	case 0:
		return nil, fmt.Errorf("no dispatch channels configured")
	case 1:
		return channels[0], nil
	default:
		return channels, nil
	}
}

// welcomeDispatcher returns the email channel when it is configured.
func welcomeDispatcher(cfg *config.Config) notify.Dispatcher {
	for _, ch := range cfg.Dispatch.Channels {
		if ch == config.ChannelEmail {
			return emailDispatcher(cfg)
		}
	}
	return nil
}
