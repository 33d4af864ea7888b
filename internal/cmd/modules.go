package cmd

var IsQuicEnabled bool

func getModuleStatus() []struct {
	Name    string
	Enabled bool
} {
	return []struct {
		Name    string
		Enabled bool
	}{
		{"Standard (Core)", true},
		{"DNS over QUIC / DoH3 upstreams", IsQuicEnabled},
	}
}
