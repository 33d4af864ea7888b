//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "domainadmin"
	buildDir   = "dist"
	cmdPath    = "./cmd/domainadmin"
	pslPath    = "data/public_suffix_list.dat"
)

var Default = Build

// version is the nearest tag plus distance and dirty marker, or the short
// commit when the repository has no tags.
func version() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "0.0.0-dev"
	}
	return v
}

func ldflags() string {
	return fmt.Sprintf("-s -w -X 'domainadmin/internal/cmd.Version=%s'", version())
}

func build(tags string) error {
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-tags", tags, "-ldflags", ldflags(), "-o", filepath.Join(buildDir, binaryName), cmdPath)
}

// Build compiles the binary with the standard DNS backend
func Build() error {
	return build("")
}

// Full compiles the binary with DNS over QUIC / DoH3 upstreams
func Full() error {
	return build("quic")
}

// Test runs the test suite, then the DNS and CLI packages again with the quic backend
func Test() error {
	if err := sh.RunV("go", "test", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "test", "-tags", "quic", "./internal/dns/...", "./internal/cmd/...")
}

// UpdatePSL downloads a Public Suffix List snapshot for use as psl.file
func UpdatePSL() error {
	return sh.RunV("go", "run", "./scripts/update_psl.go", pslPath)
}

// Completions writes shell completion scripts into dist/completions
func Completions() error {
	mg.Deps(Build)
	dir := filepath.Join(buildDir, "completions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	bin := filepath.Join(buildDir, binaryName)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := sh.Output(bin, "completion", shell)
		if err != nil {
			return fmt.Errorf("%s completion: %w", shell, err)
		}
		if err := os.WriteFile(filepath.Join(dir, shell), []byte(out), 0644); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes build artifacts
func Clean() error {
	return os.RemoveAll(buildDir)
}
