package config

import (
	"encoding/json"
	"os"
	"time"
)

// Config is the root configuration structure
type Config struct {
	App        AppConfig        `json:"app"`
	Serial     SerialConfig     `json:"serial"`
	Measure    MeasureConfig    `json:"measure"`
	Export     ExportConfig     `json:"export"`
	Logging    LoggingConfig    `json:"logging"`
	Monitoring MonitoringConfig `json:"monitoring"`
	Slack      SlackConfig      `json:"slack"`
}

// AppConfig contains application metadata
type AppConfig struct {
	Name       string `json:"name"`
	InstanceID string `json:"instance_id"`
}

// SerialConfig selects the controller's serial port. An empty port
// name means automatic discovery by USB vendor ID.
type SerialConfig struct {
	Port string `json:"port,omitempty"`
}

// MeasureConfig contains measurement defaults
type MeasureConfig struct {
	Repetitions int     `json:"repetitions"`
	Distance    string  `json:"distance,omitempty"`
	Temperature string  `json:"temperature,omitempty"`
	IntervalSec float64 `json:"interval_sec,omitempty"`
}

// ExportConfig defines where the dataset is written
type ExportConfig struct {
	Path string `json:"path"`
}

// LoggingConfig defines logging settings
type LoggingConfig struct {
	Level      string `json:"level"`
	BasePath   string `json:"base_path"`
	Filename   string `json:"filename"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	Compress   bool   `json:"compress"`
}

// MonitoringConfig defines HTTP monitoring settings
type MonitoringConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// SlackConfig defines Slack notification settings
type SlackConfig struct {
	WebhookURL     string `json:"webhook_url"`
	NotifyStartup  bool   `json:"notify_startup"`
	NotifyShutdown bool   `json:"notify_shutdown"`
	NotifyErrors   bool   `json:"notify_errors"`
}

// Load reads and parses a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, used
// when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults sets default values for unspecified fields
func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "speed-of-sound"
	}
	if c.App.InstanceID == "" {
		hostname, _ := os.Hostname()
		c.App.InstanceID = hostname
	}

	if c.Measure.Repetitions == 0 {
		c.Measure.Repetitions = 5
	}

	if c.Export.Path == "" {
		c.Export.Path = "results.csv"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Filename == "" {
		c.Logging.Filename = "speed-of-sound.log"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 50
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}

	if c.Monitoring.Port == 0 {
		c.Monitoring.Port = 8080
	}
}

// GetInterval returns the watch-mode measurement interval as a duration
func (c *MeasureConfig) GetInterval() time.Duration {
	return time.Duration(c.IntervalSec * float64(time.Second))
}
