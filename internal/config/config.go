package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Delivery channels.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
	ChannelDesktop  = "desktop"
)

// Email delivery modes.
const (
	EmailModeEndpoint = "endpoint" // POST to the send-email endpoint
	EmailModeDirect   = "direct"   // render and send through Resend in-process
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nesting levels: FITTRACK_RESEND__API_KEY sets resend.api_key.
const EnvPrefix = "FITTRACK_"

type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Reminders RemindersConfig `koanf:"reminders"`
	Dispatch  DispatchConfig  `koanf:"dispatch"`
	Email     EmailConfig     `koanf:"email"`
	Resend    ResendConfig    `koanf:"resend"`
	Telegram  TelegramConfig  `koanf:"telegram"`
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	UI        UIConfig        `koanf:"ui"`
}

type StoreConfig struct {
	Path string `koanf:"path"`
}

type RemindersConfig struct {
	Location     string       `koanf:"location"` // IANA zone name, empty for local time
	Morning      TimeOfDay    `koanf:"morning"`
	Afternoon    TimeOfDay    `koanf:"afternoon"`
	Evening      TimeOfDay    `koanf:"evening"`
	DailyReport  TimeOfDay    `koanf:"daily_report"`
	Water        WaterConfig  `koanf:"water"`
	WeeklyReport WeeklyConfig `koanf:"weekly_report"`
}

type TimeOfDay struct {
	Enabled bool `koanf:"enabled"`
	Hour    int  `koanf:"hour"`
	Minute  int  `koanf:"minute"`
}

type WaterConfig struct {
	Enabled         bool `koanf:"enabled"`
	IntervalMinutes int  `koanf:"interval_minutes"`
}

type WeeklyConfig struct {
	Enabled bool   `koanf:"enabled"`
	Day     string `koanf:"day"`
	Hour    int    `koanf:"hour"`
	Minute  int    `koanf:"minute"`
}

type DispatchConfig struct {
	Channels []string `koanf:"channels"`
	Timeout  int      `koanf:"timeout"` // seconds per dispatch
}

type EmailConfig struct {
	Mode        string `koanf:"mode"`
	EndpointURL string `koanf:"endpoint_url"`
	Timeout     int    `koanf:"timeout"`
}

type ResendConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	From    string `koanf:"from"`
	Timeout int    `koanf:"timeout"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Well-known credential variables
	for name, key := range map[string]string{
		"RESEND_API_KEY":     "resend.api_key",
		"TELEGRAM_BOT_TOKEN": "telegram.bot_token",
		"TELEGRAM_CHAT_ID":   "telegram.chat_id",
	} {
		if v := os.Getenv(name); v != "" && k.String(key) == "" {
			k.Set(key, v)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Comma-separated lists from the environment arrive as a single string.
	if len(cfg.Dispatch.Channels) == 1 && strings.Contains(cfg.Dispatch.Channels[0], ",") {
		cfg.Dispatch.Channels = splitList(cfg.Dispatch.Channels[0])
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)

	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	r := c.Reminders
	for name, at := range map[string]TimeOfDay{
		"morning":      r.Morning,
		"afternoon":    r.Afternoon,
		"evening":      r.Evening,
		"daily_report": r.DailyReport,
	} {
		if err := checkClock(name, at.Hour, at.Minute); err != nil {
			return err
		}
	}
	if r.Water.Enabled && r.Water.IntervalMinutes <= 0 {
		return fmt.Errorf("reminders.water.interval_minutes must be positive")
	}
	if r.WeeklyReport.Enabled {
		if _, err := parseWeekday(r.WeeklyReport.Day); err != nil {
			return err
		}
		if err := checkClock("weekly_report", r.WeeklyReport.Hour, r.WeeklyReport.Minute); err != nil {
			return err
		}
	}

	if c.Dispatch.Timeout <= 0 {
		return fmt.Errorf("dispatch.timeout must be positive")
	}

	for _, ch := range c.Dispatch.Channels {
		switch ch {
		case ChannelEmail:
			if err := c.validateEmail(); err != nil {
				return err
			}
		case ChannelTelegram:
			if c.Telegram.BotToken == "" || c.Telegram.ChatID == "" {
				return fmt.Errorf("telegram channel requires bot token and chat id (set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID)")
			}
		case ChannelDesktop:
		default:
			return fmt.Errorf("unknown dispatch channel: %s (supported: %s, %s, %s)",
				ch, ChannelEmail, ChannelTelegram, ChannelDesktop)
		}
	}

	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level: %s", c.Log.Level)
	}

	return nil
}

func (c *Config) validateEmail() error {
	switch c.Email.Mode {
	case EmailModeEndpoint:
		if c.Email.EndpointURL == "" {
			return fmt.Errorf("email.endpoint_url is required in endpoint mode")
		}
	case EmailModeDirect:
		return c.ValidateResend()
	default:
		return fmt.Errorf("unknown email mode: %s (supported: %s, %s)",
			c.Email.Mode, EmailModeEndpoint, EmailModeDirect)
	}
	return nil
}

// ValidateResend checks the settings needed to talk to the email provider.
func (c *Config) ValidateResend() error {
	if c.Resend.APIKey == "" {
		return fmt.Errorf("Resend API key is required (set RESEND_API_KEY or add to config file)")
	}
	if c.Resend.From == "" {
		return fmt.Errorf("resend.from is required")
	}
	return nil
}

// Location returns the time zone reminders are scheduled in.
func (c *Config) Location() (*time.Location, error) {
	name := c.Reminders.Location
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid reminders.location %q: %w", name, err)
	}
	return loc, nil
}

// Weekday returns the configured weekday, Sunday when unset or invalid.
func (w WeeklyConfig) Weekday() time.Weekday {
	d, err := parseWeekday(w.Day)
	if err != nil {
		return time.Sunday
	}
	return d
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday: %q", s)
}

func checkClock(name string, hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("reminders.%s.hour must be between 0 and 23", name)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("reminders.%s.minute must be between 0 and 59", name)
	}
	return nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
