// Package assets resolves the photo attached to each listing.
package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
)

// ErrUnresolved means no usable image could be found for a record. It
// fails the record immediately, before the reconciliation loop starts.
var ErrUnresolved = errors.New("assets: no usable image found")

// Extensions checked against the asset directory, in preference order.
var patterns = []string{"*.jpg", "*.jpeg", "*.png", "*.webp", "*.heic"}

// Resolve returns the photo path for a record. An explicit path wins
// when it exists (relative paths resolve against dir); a stale explicit
// path falls back to the directory scan rather than failing outright.
func Resolve(dir, explicit string) (string, error) {
	if explicit != "" {
		candidate := explicit
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, candidate)
		}
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return discover(dir)
}

// discover returns the first image in dir matching the extension
// patterns, checked in preference order with matches sorted per
// pattern.
func discover(dir string) (string, error) {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if fileExists(m) {
				return m, nil
			}
		}
	}
	return "", ErrUnresolved
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
