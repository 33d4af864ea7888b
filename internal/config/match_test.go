package config

import "testing"

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		host    string
		want    bool
	}{
		{"", "example.com", false},
		{"#comment", "example.com", false},
		{"example.com", "example.com", true},
		{"example.com", "www.example.com", false},
		{"$example.com", "example.com", true},
		{"$example.com", "www.example.com", false},
		{"*example.com", "www.example.com", true},
		{"*example.com", "anotherexample.com", true},
		{"*.example.com", "example.com", true},
		{"*.example.com", "www.example.com", true},
		{"*.example.com", "anotherexample.com", false},
		{"*.test", "api.staging.test", true},
		{"192.168.*", "192.168.1.10", true},
	}

	for _, tt := range tests {
		got := MatchPattern(tt.pattern, tt.host)
		if got != tt.want {
			t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.host, got, tt.want)
		}
	}
}

func TestImportConfig_Excluded(t *testing.T) {
	c := ImportConfig{Exclude: []string{"*.local", "$localhost"}}

	if !c.Excluded("printer.local") {
		t.Errorf("printer.local should be excluded")
	}
	if !c.Excluded("localhost") {
		t.Errorf("localhost should be excluded")
	}
	if c.Excluded("example.com") {
		t.Errorf("example.com should not be excluded")
	}
}
