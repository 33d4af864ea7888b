// Package record turns domain list files into ParsedDomain records.
package record

import (
	"path/filepath"
	"strings"
)

// DefaultPort is the TLS port assumed when the input names none.
const DefaultPort = 443

// ParsedDomain is one normalized input entry.
type ParsedDomain struct {
	Domain     string `json:"domain"`
	RootDomain string `json:"root_domain"` // "" for IP literals and unknown suffixes
	GroupName  string `json:"group_name"`
	Port       int    `json:"port"`
	Alias      string `json:"alias"`
}

// Format selects the parsing strategy.
type Format int

const (
	FormatLines Format = iota
	FormatTable
)

func (f Format) String() string {
	switch f {
	case FormatTable:
		return "table"
	default:
		return "lines"
	}
}

// Ext returns the file extension without the leading dot, lower-cased.
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// FormatFor picks the table strategy for .csv files and the line strategy for
// everything else.
func FormatFor(filename string) Format {
	if Ext(filename) == "csv" {
		return FormatTable
	}
	return FormatLines
}
