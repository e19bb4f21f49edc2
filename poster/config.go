package poster

import (
	"github.com/geekbim/Auto-Post-FB-Marketplace/poster/internal/config"
)

// Config aliases re-export the configuration types so callers outside
// the module tree never import internal packages.
type (
	Config          = config.Config
	BrowserConfig   = config.BrowserConfig
	FilesConfig     = config.FilesConfig
	ReconcileConfig = config.ReconcileConfig
	JournalConfig   = config.JournalConfig
)

// LoadConfig reads a YAML configuration file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}
