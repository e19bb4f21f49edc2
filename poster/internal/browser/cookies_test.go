package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func boolPtr(b bool) *bool       { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestNormalizeCookies(t *testing.T) {
	raw := []RawCookie{
		{
			Name:           "c_user",
			Value:          "100001",
			Domain:         ".facebook.com",
			SameSite:       "no_restriction",
			ExpirationDate: floatPtr(1790000000.5),
		},
		{
			Name:     "xs",
			Value:    "tok",
			Domain:   ".facebook.com",
			Path:     "/m",
			HTTPOnly: true,
			Secure:   boolPtr(false),
			SameSite: "lax",
			Session:  true,
			// Expiry present but session-scoped: must not be carried.
			ExpirationDate: floatPtr(1790000000),
		},
		{Name: "", Domain: ".facebook.com"},
		{Name: "orphan", Domain: ""},
	}

	params := NormalizeCookies(raw)
	if len(params) != 2 {
		t.Fatalf("got %d cookies, want 2", len(params))
	}

	first := params[0]
	if first.Path != "/" {
		t.Errorf("Path default: got %q, want /", first.Path)
	}
	if !first.Secure {
		t.Error("Secure default: got false, want true")
	}
	if first.SameSite != proto.NetworkCookieSameSiteNone {
		t.Errorf("SameSite: got %v, want None", first.SameSite)
	}
	if first.Expires != proto.TimeSinceEpoch(1790000000.5) {
		t.Errorf("Expires: got %v, want 1790000000.5", first.Expires)
	}

	second := params[1]
	if second.Path != "/m" {
		t.Errorf("Path: got %q, want /m", second.Path)
	}
	if second.Secure {
		t.Error("explicit secure=false overridden")
	}
	if second.SameSite != proto.NetworkCookieSameSiteLax {
		t.Errorf("SameSite: got %v, want Lax", second.SameSite)
	}
	if second.Expires != 0 {
		t.Errorf("session cookie carried expiry: %v", second.Expires)
	}
}

func TestLoadCookieFile_Shapes(t *testing.T) {
	dir := t.TempDir()

	arr := filepath.Join(dir, "arr.json")
	os.WriteFile(arr, []byte(`[{"name":"a","value":"1","domain":"x"}]`), 0o644)
	got, err := LoadCookieFile(arr)
	if err != nil || len(got) != 1 {
		t.Fatalf("array shape: got %d cookies, err %v", len(got), err)
	}

	wrapped := filepath.Join(dir, "wrapped.json")
	os.WriteFile(wrapped, []byte(`{"fb_cookies":[{"name":"a","value":"1","domain":"x"},{"name":"b","value":"2","domain":"x"}]}`), 0o644)
	got, err = LoadCookieFile(wrapped)
	if err != nil || len(got) != 2 {
		t.Fatalf("wrapped shape: got %d cookies, err %v", len(got), err)
	}
}

func TestLoadCookieFile_Missing(t *testing.T) {
	got, err := LoadCookieFile(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
