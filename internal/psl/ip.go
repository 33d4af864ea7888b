package psl

import (
	"net/netip"
	"strings"
)

// IsIPLiteral reports whether token is an IPv4 or IPv6 address. Brackets around
// an IPv6 literal and a zone suffix are accepted.
func IsIPLiteral(token string) bool {
	token = strings.TrimSpace(token)
	if len(token) > 2 && token[0] == '[' && token[len(token)-1] == ']' {
		token = token[1 : len(token)-1]
	}
	_, err := netip.ParseAddr(token)
	return err == nil
}
