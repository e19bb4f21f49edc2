// Package config handles poster configuration from YAML files.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level poster configuration.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Files     FilesConfig     `yaml:"files"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Journal   JournalConfig   `yaml:"journal"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	Remote         string `yaml:"remote"`
	Headless       bool   `yaml:"headless"`
	ProfileDir     string `yaml:"profile_dir"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
}

// FilesConfig locates the external inputs.
type FilesConfig struct {
	// Data is the JSON listings file. Missing/empty = one default record.
	Data string `yaml:"data"`
	// Cookies is the JSON cookie export to import into the browser.
	Cookies string `yaml:"cookies"`
	// Photo overrides per-record photo resolution when set.
	Photo string `yaml:"photo"`
	// AssetDir is scanned for the first usable image when no explicit
	// photo path is given.
	AssetDir string `yaml:"asset_dir"`
}

// ReconcileConfig tunes the per-record reconciliation loop.
type ReconcileConfig struct {
	// Deadline is the per-record wall-clock budget.
	Deadline time.Duration `yaml:"deadline"`
	// StabilityThreshold is the number of consecutive fully-successful
	// passes required before side-effecting actions run.
	StabilityThreshold int `yaml:"stability_threshold"`
	// Tick is the pause between passes.
	Tick time.Duration `yaml:"tick"`
}

// JournalConfig controls the SQLite run journal.
type JournalConfig struct {
	// Path of the journal database. Empty disables journaling.
	Path string `yaml:"path"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Browser.ProfileDir == "" {
		c.Browser.ProfileDir = ".fb-profile"
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = 1400
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = 900
	}
	if c.Files.Data == "" {
		c.Files.Data = "data.json"
	}
	if c.Files.Cookies == "" {
		c.Files.Cookies = "cookies.json"
	}
	if c.Files.AssetDir == "" {
		c.Files.AssetDir = "."
	}
	if c.Reconcile.Deadline <= 0 {
		c.Reconcile.Deadline = 180 * time.Second
	}
	if c.Reconcile.StabilityThreshold <= 0 {
		c.Reconcile.StabilityThreshold = 2
	}
	if c.Reconcile.Tick <= 0 {
		c.Reconcile.Tick = 1500 * time.Millisecond
	}
}
