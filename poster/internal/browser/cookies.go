package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// RawCookie is one entry of a browser-extension cookie export.
type RawCookie struct {
	Name           string   `json:"name"`
	Value          string   `json:"value"`
	Domain         string   `json:"domain"`
	Path           string   `json:"path"`
	HTTPOnly       bool     `json:"httpOnly"`
	Secure         *bool    `json:"secure"`
	SameSite       string   `json:"sameSite"`
	Session        bool     `json:"session"`
	ExpirationDate *float64 `json:"expirationDate"`
}

// LoadCookieFile reads a JSON cookie export: either a top-level array
// or an object with an "fb_cookies" array. A missing file returns nil
// and no error — the persistent profile may already hold a session.
func LoadCookieFile(path string) ([]RawCookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("browser: read cookies %s: %w", path, err)
	}

	var cookies []RawCookie
	if err := json.Unmarshal(data, &cookies); err == nil {
		return cookies, nil
	}

	var wrapped struct {
		FBCookies []RawCookie `json:"fb_cookies"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("browser: parse cookies %s: %w", path, err)
	}
	return wrapped.FBCookies, nil
}

// NormalizeCookies maps raw export entries onto the CDP cookie schema:
// defaulted path and secure flag, sameSite mapped onto the recognised
// enumeration, and expiry carried as an epoch timestamp only for
// non-session cookies. Entries without a name or domain are dropped.
func NormalizeCookies(raw []RawCookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(raw))
	for _, c := range raw {
		if c.Name == "" || c.Domain == "" {
			continue
		}

		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   true,
		}
		if p.Path == "" {
			p.Path = "/"
		}
		if c.Secure != nil {
			p.Secure = *c.Secure
		}

		switch strings.ToLower(c.SameSite) {
		case "lax":
			p.SameSite = proto.NetworkCookieSameSiteLax
		case "strict":
			p.SameSite = proto.NetworkCookieSameSiteStrict
		case "none", "no_restriction":
			p.SameSite = proto.NetworkCookieSameSiteNone
		}

		if !c.Session && c.ExpirationDate != nil {
			p.Expires = proto.TimeSinceEpoch(*c.ExpirationDate)
		}

		params = append(params, p)
	}
	return params
}
