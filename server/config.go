package server

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/wego-social/wego-tools/internal/xtime"
	"github.com/wego-social/wego-tools/server/auth"
	"github.com/wego-social/wego-tools/server/database"
	"github.com/wego-social/wego-tools/server/wego"
)

func LoadConfig(cfgPath string) (Config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cfg := defaultConfig()
	if _, err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:     slog.LevelInfo,
			Format:    LogFormatText,
			AddSource: false,
		},
		Server: ServerConfig{
			Addr: ":8085",
		},
		Database: database.Config{
			Host:     "localhost",
			Port:     5432,
			Username: "postgres",
			Password: "password",
			Database: "wego-tools",
		},
		WeGo: wego.Config{
			BaseURL:    "http://localhost:4000/api",
			Every:      xtime.Duration(1 * time.Second),
			Burst:      40,
			MaxRetries: 3,
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: xtime.Duration(15 * time.Minute),
			Workers:  4,
		},
	}
}

type Config struct {
	Dev           bool                `toml:"dev"`
	Log           LogConfig           `toml:"log"`
	Server        ServerConfig        `toml:"server"`
	Database      database.Config     `toml:"database"`
	WeGo          wego.Config         `toml:"wego"`
	Auth          auth.Config         `toml:"auth"`
	Refresh       RefreshConfig       `toml:"refresh"`
	Notifications NotificationsConfig `toml:"notifications"`
}

func (c Config) String() string {
	return fmt.Sprintf("Dev: %t\nLog: %s\nServer: %s\nDatabase: %s\nWeGo: %s\nAuth: %s\nRefresh: %s\nNotifications: %s",
		c.Dev,
		c.Log,
		c.Server,
		c.Database,
		c.WeGo,
		c.Auth,
		c.Refresh,
		c.Notifications,
	)
}

type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    LogFormat  `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

func (c LogConfig) String() string {
	return fmt.Sprintf("\n Level: %s\n Format: %s\n AddSource: %t",
		c.Level,
		c.Format,
		c.AddSource,
	)
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	PublicURL string `toml:"public_url"`
}

func (c ServerConfig) String() string {
	return fmt.Sprintf("\n Address: %s\n PublicURL: %s",
		c.Addr,
		c.PublicURL,
	)
}

type RefreshConfig struct {
	Enabled  bool           `toml:"enabled"`
	Interval xtime.Duration `toml:"interval"`
	Workers  int            `toml:"workers"`
}

func (c RefreshConfig) String() string {
	return fmt.Sprintf("\n Enabled: %t\n Interval: %s\n Workers: %d",
		c.Enabled,
		c.Interval,
		c.Workers,
	)
}

type NotificationsConfig struct {
	Enabled    bool   `toml:"enabled"`
	WebhookURL string `toml:"webhook_url"`
}

func (c NotificationsConfig) String() string {
	return fmt.Sprintf("\n Enabled: %t\n WebhookURL: %s",
		c.Enabled,
		c.WebhookURL,
	)
}
