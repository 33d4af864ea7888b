package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

const (
	PSLURL   = "https://publicsuffix.org/list/public_suffix_list.dat"
	minRules = 5000
)

// Downloads the current Public Suffix List, checks that it parses and writes
// it to the path given as the first argument (default public_suffix_list.dat).
// Point psl.file in config.toml at the result to pin a snapshot.
func main() {
	out := "public_suffix_list.dat"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	if err := run(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(out string) error {
	fmt.Printf("Downloading %s...\n", PSLURL)
	client := &http.Client{Timeout: 60 * time.Second}
	req, err := http.NewRequest("GET", PSLURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "domainadmin-update-psl")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	list := publicsuffix.NewList()
	rules, err := list.LoadString(string(data), &publicsuffix.ParserOption{PrivateDomains: true})
	if err != nil {
		return fmt.Errorf("failed to parse list: %w", err)
	}
	if len(rules) < minRules {
		return fmt.Errorf("list has only %d rules, refusing to write it", len(rules))
	}
	fmt.Printf("Loaded %d rules\n", len(rules))

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}

	fmt.Printf("✓ Updated %s\n", out)
	return nil
}
