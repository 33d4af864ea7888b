package hostname

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// ErrEncoding is wrapped by every error returned from Encode.
var ErrEncoding = errors.New("idna encoding failed")

// Encode converts a Unicode hostname to its ASCII-compatible (xn--) form.
// Pure ASCII input is returned unchanged.
func Encode(host string) (string, error) {
	if isASCII(host) {
		return host, nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrEncoding, host, err)
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
