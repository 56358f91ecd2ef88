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

type Config struct {
	Telegram TelegramConfig `koanf:"telegram"`
	Calendar CalendarConfig `koanf:"calendar"`
	Notifier NotifierConfig `koanf:"notifier"`
	Log      LogConfig      `koanf:"log"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	// ChatID optionally pre-records the notification recipient. Normally the
	// recipient is recorded when the user first sends /start.
	ChatID      int64 `koanf:"chat_id"`
	PollTimeout int   `koanf:"poll_timeout"` // getUpdates long-poll timeout, seconds
}

type CalendarConfig struct {
	CredentialsFile string `koanf:"credentials_file"` // OAuth client secrets JSON
	TokenFile       string `koanf:"token_file"`       // cached OAuth token
	CalendarID      string `koanf:"calendar_id"`
	TimeZone        string `koanf:"time_zone"` // named zone for created events
	MaxResults      int64  `koanf:"max_results"`
}

type NotifierConfig struct {
	Enabled        bool   `koanf:"enabled"`
	Interval       int    `koanf:"interval"`  // seconds between polls
	Lookahead      int    `koanf:"lookahead"` // seconds ahead of now to notify for
	SeenDB         string `koanf:"seen_db"`   // SQLite file tracking notified events
	RetentionHours int    `koanf:"retention_hours"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
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

	// CALIBOT_LOG_LEVEL=debug -> log.level, etc. Only the first underscore
	// separates the section from the key.
	if err := k.Load(env.Provider("CALIBOT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "CALIBOT_"))
		return strings.Replace(s, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// The bot token is the usual secret; honor the conventional variable too.
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("telegram.bot_token", token)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Calendar.CredentialsFile = expandPath(cfg.Calendar.CredentialsFile)
	cfg.Calendar.TokenFile = expandPath(cfg.Calendar.TokenFile)
	cfg.Notifier.SeenDB = expandPath(cfg.Notifier.SeenDB)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required (set TELEGRAM_BOT_TOKEN or add to config file)")
	}

	if c.Telegram.PollTimeout <= 0 {
		return fmt.Errorf("telegram poll_timeout must be positive")
	}

	if c.Calendar.CredentialsFile == "" {
		return fmt.Errorf("calendar credentials_file is required")
	}

	if c.Calendar.CalendarID == "" {
		return fmt.Errorf("calendar_id is required")
	}

	if c.Calendar.MaxResults <= 0 {
		return fmt.Errorf("calendar max_results must be positive")
	}

	if _, err := time.LoadLocation(c.Calendar.TimeZone); err != nil {
		return fmt.Errorf("invalid calendar time_zone %q: %w", c.Calendar.TimeZone, err)
	}

	if c.Notifier.Interval <= 0 {
		return fmt.Errorf("notifier interval must be positive")
	}

	if c.Notifier.Lookahead <= 0 {
		return fmt.Errorf("notifier lookahead must be positive")
	}

	if c.Notifier.RetentionHours <= 0 {
		return fmt.Errorf("notifier retention_hours must be positive")
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
