// Package browser manages the Chrome session the poster drives: launch
// or remote attach via Rod, stealth tab creation, and cookie import.
package browser

import (
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless controls the local launch mode. The form is normally
	// driven headed so a human can complete login challenges.
	Headless bool

	// ProfileDir is the persistent user-data directory, keeping the
	// session logged in across runs.
	ProfileDir string

	ViewportWidth  int
	ViewportHeight int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1400
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 900
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the Chrome process for one poster run.
type Manager struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager creates a browser Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance) and returns
// the Rod browser handle.
func (m *Manager) Start() (*rod.Browser, error) {
	log := m.cfg.Logger

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(m.cfg.Headless)
		if m.cfg.ProfileDir != "" {
			l = l.UserDataDir(m.cfg.ProfileDir)
		}

		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome",
			"url", wsURL, "headless", m.cfg.Headless, "profile", m.cfg.ProfileDir)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	m.browser = b
	return b, nil
}

// Browser returns the current Rod browser handle.
func (m *Manager) Browser() *rod.Browser {
	return m.browser
}

// Close shuts down Chrome.
func (m *Manager) Close() error {
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Kill()
		// Cleanup removes the user data dir; skip it when the profile
		// must survive for the next run's login session.
		if m.cfg.ProfileDir == "" {
			m.lnch.Cleanup()
		}
		m.lnch = nil
	}
	return nil
}
