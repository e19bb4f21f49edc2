package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab wraps the Rod page the poster works on. One Tab is shared across
// records; each record navigates it to its own target URL.
type Tab struct {
	Page    *rod.Page
	manager *Manager
}

// OpenTab creates a stealth page with the configured viewport applied.
func OpenTab(ctx context.Context, mgr *Manager) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             mgr.cfg.ViewportWidth,
		Height:            mgr.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		mgr.cfg.Logger.Warn("browser: set viewport failed", "error", err)
	}

	return &Tab{Page: page, manager: mgr}, nil
}

// Navigate loads pageURL and waits for the DOM to be ready, bounded by
// a 30s navigation timeout. A wait-load timeout is not fatal: the host
// renders the form long after load on slow sessions.
func (t *Tab) Navigate(ctx context.Context, pageURL string) error {
	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := t.Page.Context(navCtx).Navigate(pageURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := t.Page.Context(navCtx).WaitLoad(); err != nil {
		t.manager.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}
	return nil
}

// URL returns the page's current location, or "" when unavailable.
func (t *Tab) URL(ctx context.Context) string {
	res, err := t.Page.Context(ctx).Eval(`() => window.location.href`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// SetCookies imports cookies into the page before navigation.
func (t *Tab) SetCookies(cookies []*proto.NetworkCookieParam) error {
	if len(cookies) == 0 {
		return nil
	}
	if err := t.Page.SetCookies(cookies); err != nil {
		return fmt.Errorf("browser: set cookies: %w", err)
	}
	return nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
