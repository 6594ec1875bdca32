package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string   `yaml:"address"`
		APIKeys []string `yaml:"api_keys"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Booking struct {
		SlotGranularityMinutes      int `yaml:"slot_granularity_minutes"`
		EditGranularityMinutes      int `yaml:"edit_granularity_minutes"`
		MinAdvanceMinutes           int `yaml:"min_advance_minutes"`
		CancellationDeadlineMinutes int `yaml:"cancellation_deadline_minutes"`
	} `yaml:"booking"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Notifications struct {
		Enabled           bool    `yaml:"enabled"`
		BotToken          string  `yaml:"bot_token"`
		MessagesPerSecond float64 `yaml:"messages_per_second"`
		ManagerChatIDs    []int64 `yaml:"manager_chat_ids"`
	} `yaml:"notifications"`

	Reports struct {
		Enabled           bool `yaml:"enabled"`
		ExportOnStart     bool `yaml:"export_on_start"`
		DataRetentionDays int  `yaml:"data_retention_days"`
	} `yaml:"reports"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/bookings.db"
	}
	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ServerAddress returns the listen address for the booking API.
func (c *Config) ServerAddress() string {
	if c.Server.Address == "" {
		return ":8080"
	}
	return c.Server.Address
}

// SlotGranularity is the booking grid step in minutes.
func (c *Config) SlotGranularity() int {
	if c.Booking.SlotGranularityMinutes <= 0 {
		return 15
	}
	return c.Booking.SlotGranularityMinutes
}

// EditGranularity is the schedule-editing grid step in minutes.
func (c *Config) EditGranularity() int {
	if c.Booking.EditGranularityMinutes <= 0 {
		return 30
	}
	return c.Booking.EditGranularityMinutes
}
