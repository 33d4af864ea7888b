// Package hostname pulls the host[:port] part out of loosely formatted input
// and converts internationalized names to their ASCII form.
package hostname

import (
	"net/netip"
	"regexp"
	"strings"
)

// hostPattern: optional http(s):// or // prefix, then either a bracketed IPv6
// literal with optional port, or a run of word characters, '.', ':' and '-'.
var hostPattern = regexp.MustCompile(`^(?:(?i:https?:)?//)?(\[[0-9A-Fa-f:.%\w]+\](?::[0-9]*)?|[\p{L}\p{N}\p{M}_.:-]+)`)

// Extract returns the host[:port] token at the start of raw. It reports false
// when nothing host-like is found. Anything from the first '/' on is dropped.
func Extract(raw string) (string, bool) {
	m := hostPattern.FindStringSubmatch(raw)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// SplitHostPort separates a token returned by Extract into host and port.
// The port is "" when absent. Bracketed IPv6 literals are unwrapped, a bare
// IPv6 literal is returned whole. Other tokens with several colons are split
// at the first one.
func SplitHostPort(hostport string) (host, port string) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return hostport, ""
		}
		return hostport[1:end], strings.TrimPrefix(hostport[end+1:], ":")
	}

	if strings.Count(hostport, ":") > 1 {
		if _, err := netip.ParseAddr(hostport); err == nil {
			return hostport, ""
		}
	}

	host, port, _ = strings.Cut(hostport, ":")
	return host, port
}
