package config

import (
	"path/filepath"
	"strings"
)

// MatchPattern reports whether host matches an exclude pattern.
// "#..." never matches, a leading "$" is stripped, "*.example.com" also matches
// the bare example.com, anything else is a filepath.Match glob or an exact name.
func MatchPattern(pattern, host string) bool {
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return false
	}
	pattern = strings.TrimPrefix(pattern, "$")

	if matched, _ := filepath.Match(pattern, host); matched {
		return true
	}

	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:]
		if host == suffix[1:] || strings.HasSuffix(host, suffix) {
			return true
		}
	}

	return host == pattern
}

// Excluded reports whether host matches any of the import exclude patterns.
func (c ImportConfig) Excluded(host string) bool {
	for _, p := range c.Exclude {
		if MatchPattern(p, host) {
			return true
		}
	}
	return false
}
