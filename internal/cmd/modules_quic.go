//go:build quic

package cmd

func init() {
	IsQuicEnabled = true
}
