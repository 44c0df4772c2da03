package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/smsledger/internal/sender"
	"github.com/cleared-dev/smsledger/internal/validate"
)

// FileName is the config file written by init and read by default.
const FileName = "smsledger.yaml"

// Config represents the top-level smsledger.yaml configuration.
type Config struct {
	Senders    []sender.Rule    `yaml:"senders"`
	Tables     TablesConfig     `yaml:"tables"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Timezone   string           `yaml:"timezone"`
	Workers    int              `yaml:"workers"`
	Log        LogConfig        `yaml:"log"`
}

// TablesConfig points at the lookup tables. Relative paths are resolved
// against the config file's directory; an empty path selects the built-in
// table (or an empty contact book).
type TablesConfig struct {
	Merchants  string `yaml:"merchants,omitempty"`
	Categories string `yaml:"categories,omitempty"`
	Contacts   string `yaml:"contacts,omitempty"`
}

// ThresholdsConfig controls presentation only.
type ThresholdsConfig struct {
	MinDisplay float64 `yaml:"min_display"`
}

// DedupConfig selects the duplicate guard's memory.
type DedupConfig struct {
	Mode     string        `yaml:"mode"` // "batch" or "rolling"
	Window   time.Duration `yaml:"window"`
	Capacity int           `yaml:"capacity"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Load reads an smsledger.yaml file from disk, fills unset fields with
// defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the built-in sender list and tables.
func Default() *Config {
	return &Config{
		Senders: sender.DefaultRules(),
		Thresholds: ThresholdsConfig{
			MinDisplay: 0.3,
		},
		Dedup: DedupConfig{
			Mode:     "batch",
			Window:   24 * time.Hour,
			Capacity: 10000,
		},
		Timezone: "Asia/Kolkata",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Dedup.Mode == "" {
		c.Dedup.Mode = d.Dedup.Mode
	}
	if c.Dedup.Window == 0 {
		c.Dedup.Window = d.Dedup.Window
	}
	if c.Dedup.Capacity == 0 {
		c.Dedup.Capacity = d.Dedup.Capacity
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate reports every problem with the config at once.
func (c *Config) Validate() error {
	v := validate.For("config")
	if len(c.Senders) == 0 {
		v.Add("senders", "at least one sender pattern is required")
	}
	for i, s := range c.Senders {
		if strings.TrimSpace(s.Pattern) == "" {
			v.Add("senders", "entry %d has an empty pattern", i+1)
		}
	}
	if c.Thresholds.MinDisplay < 0 || c.Thresholds.MinDisplay > 1 {
		v.Add("thresholds.min_display", "%v is outside [0,1]", c.Thresholds.MinDisplay)
	}
	switch c.Dedup.Mode {
	case "batch":
	case "rolling":
		if c.Dedup.Window <= 0 {
			v.Add("dedup.window", "rolling mode needs a positive window")
		}
	default:
		v.Add("dedup.mode", "unknown mode %q", c.Dedup.Mode)
	}
	if c.Dedup.Capacity < 0 {
		v.Add("dedup.capacity", "must not be negative")
	}
	if c.Workers < 0 {
		v.Add("workers", "must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		v.Add("timezone", "%v", err)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		v.Add("log.level", "unknown level %q", c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "console" && f != "json" {
		v.Add("log.format", "unknown format %q", c.Log.Format)
	}
	return v.Err()
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone: %w", err)
	}
	return loc, nil
}

// ResolvePath makes a table path absolute relative to baseDir. Empty paths
// stay empty.
func ResolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
