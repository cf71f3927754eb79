package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"semainier/internal/timegrid"
)

// BackupConfig controls the periodic file copy of the audit database.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type Config struct {
	Shop struct {
		Name string `yaml:"name"`
	} `yaml:"shop"`

	Grid timegrid.Config `yaml:"grid"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Audit struct {
		RetentionDays int `yaml:"retention_days"`
	} `yaml:"audit"`

	Backup BackupConfig `yaml:"backup"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
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

	if cfg.Shop.Name == "" {
		cfg.Shop.Name = "default"
	}

	if cfg.Grid.IntervalMinutes == 0 {
		cfg.Grid.IntervalMinutes = 30
	}
	if cfg.Grid.StartTime == "" {
		cfg.Grid.StartTime = "08:00"
	}
	if cfg.Grid.EndTime == "" {
		cfg.Grid.EndTime = "20:00"
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/semainier.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) AuditRetention() time.Duration {
	if c.Audit.RetentionDays <= 0 {
		return 90 * 24 * time.Hour
	}
	return time.Duration(c.Audit.RetentionDays) * 24 * time.Hour
}
