package config

type Config struct {
	Log     LogConfig     `toml:"log"`
	Import  ImportConfig  `toml:"import"`
	PSL     PSLConfig     `toml:"psl"`
	DNS     DNSConfig     `toml:"DNS"`
	Check   CheckConfig   `toml:"check"`
	ICP     ICPConfig     `toml:"icp"`
	Metrics MetricsConfig `toml:"metrics"`
}

type LogConfig struct {
	Level string `toml:"loglevel"`
	File  string `toml:"logfile"`
}

type ImportConfig struct {
	DefaultPort int           `toml:"default_port"`
	Exclude     []string      `toml:"exclude"` // patterns, see MatchPattern
	Columns     ColumnsConfig `toml:"columns"`
}

// ColumnsConfig lists the header names accepted for each logical table field.
type ColumnsConfig struct {
	Domain []string `toml:"domain"`
	Alias  []string `toml:"alias"`
	Group  []string `toml:"group"`
	Port   []string `toml:"port"`
}

type PSLConfig struct {
	File           string `toml:"file"`
	URL            string `toml:"url"`
	IncludePrivate bool   `toml:"include_private"`
}

type DNSConfig struct {
	Nameserver   []string `toml:"nameserver"`
	BootstrapDNS []string `toml:"bootstrap_dns"`
	Timeout      int      `toml:"timeout"` // seconds
}

type CheckConfig struct {
	Timeout     int  `toml:"timeout"` // seconds
	Concurrency int  `toml:"concurrency"`
	ResolveDNS  bool `toml:"resolve_dns"`
}

type ICPConfig struct {
	Endpoint string  `toml:"endpoint"`
	Timeout  int     `toml:"timeout"` // seconds
	Rate     float64 `toml:"rate"`    // requests per second
	Burst    int     `toml:"burst"`
	CacheDir string  `toml:"cache_dir"`
	CacheTTL string  `toml:"cache_ttl"`
}

type MetricsConfig struct {
	Address string `toml:"address"`
}
