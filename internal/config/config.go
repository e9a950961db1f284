package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the workspace config file.
const FileName = "dailywee.yml"

// LaunchLayout is the date layout of ritual.launch.
const LaunchLayout = "2006-01-02"

// Config models dailywee.yml.
type Config struct {
	Ritual struct {
		Launch             string `yaml:"launch" json:"launch"`
		HorizonDays        int    `yaml:"horizon_days" json:"horizon_days"`
		ShuffleSeed        uint32 `yaml:"shuffle_seed" json:"shuffle_seed"`
		UltimateDayOfMonth int    `yaml:"ultimate_day_of_month" json:"ultimate_day_of_month"`
	} `yaml:"ritual" json:"ritual"`
	Classifier struct {
		TwosThreshold    int `yaml:"twos_threshold" json:"twos_threshold"`
		UltimateMinHacks int `yaml:"ultimate_min_hacks" json:"ultimate_min_hacks"`
	} `yaml:"classifier" json:"classifier"`
	Paths struct {
		Pool     string `yaml:"pool" json:"pool"`
		Calendar string `yaml:"calendar" json:"calendar"`
		Curation string `yaml:"curation" json:"curation"`
	} `yaml:"paths" json:"paths"`
	Leaderboard struct {
		MaxNameLength int `yaml:"max_name_length" json:"max_name_length"`
		MaxScore      int `yaml:"max_score" json:"max_score"`
		TopN          int `yaml:"top_n" json:"top_n"`
		WinnerDays    int `yaml:"winner_days" json:"winner_days"`
	} `yaml:"leaderboard" json:"leaderboard"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with dw config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Ritual.Launch == "" {
		return fmt.Errorf("config.ritual.launch is required")
	}
	if _, err := c.Epoch(); err != nil {
		return err
	}
	if c.Ritual.HorizonDays <= 0 {
		return fmt.Errorf("config.ritual.horizon_days must be positive")
	}
	if c.Ritual.UltimateDayOfMonth < 1 || c.Ritual.UltimateDayOfMonth > 31 {
		return fmt.Errorf("config.ritual.ultimate_day_of_month must be within 1..31")
	}
	if c.Classifier.TwosThreshold <= 0 {
		return fmt.Errorf("config.classifier.twos_threshold must be positive")
	}
	if c.Classifier.UltimateMinHacks <= 0 {
		return fmt.Errorf("config.classifier.ultimate_min_hacks must be positive")
	}
	if c.Paths.Pool == "" {
		return fmt.Errorf("config.paths.pool is required")
	}
	if c.Paths.Calendar == "" {
		return fmt.Errorf("config.paths.calendar is required")
	}
	if c.Leaderboard.MaxNameLength <= 0 {
		return fmt.Errorf("config.leaderboard.max_name_length must be positive")
	}
	if c.Leaderboard.MaxScore <= 0 {
		return fmt.Errorf("config.leaderboard.max_score must be positive")
	}
	if c.Leaderboard.TopN <= 0 {
		return fmt.Errorf("config.leaderboard.top_n must be positive")
	}
	if c.Leaderboard.WinnerDays <= 0 {
		return fmt.Errorf("config.leaderboard.winner_days must be positive")
	}
	return nil
}

// Epoch returns the launch date as UTC midnight.
func (c *Config) Epoch() (time.Time, error) {
	t, err := time.ParseInLocation(LaunchLayout, c.Ritual.Launch, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("config.ritual.launch %q: want YYYY-MM-DD", c.Ritual.Launch)
	}
	return t, nil
}

// Resolve joins a configured path onto the workspace unless it is absolute.
func Resolve(workspace, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, p)
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, FileName)
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys missing from
// the document keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return FromYAML(data)
}

// LoadFile reads an explicit config file when one is given, otherwise the
// optional workspace config.
func LoadFile(workspace, file string) (*Config, error) {
	if file != "" {
		return FromFile(file)
	}
	return LoadOptional(workspace)
}

const defaultTemplate = `ritual:
  # day offset 0 of the calendar, UTC
  launch: "2026-01-06"
  horizon_days: 365
  shuffle_seed: 42069
  ultimate_day_of_month: 2

classifier:
  twos_threshold: 16
  ultimate_min_hacks: 2

paths:
  pool: seeds/TheDailyWee.csv
  calendar: public/daily_ritual.json
  curation: curated_seeds.csv

leaderboard:
  max_name_length: 20
  max_score: 999999999
  top_n: 10
  winner_days: 7
`
