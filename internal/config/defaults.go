package config

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.default.toml
var DefaultConfigTOML string

// DefaultConfig returns a fresh copy of the embedded defaults.
func DefaultConfig() Config {
	var cfg Config
	if err := toml.Unmarshal([]byte(DefaultConfigTOML), &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}
