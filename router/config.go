package router

const (
	DefaultTorProxy = "socks5://vpn-proxy:9150"
	DefaultVPNProxy = "http://vpn-proxy:8888"
)

type Config struct {
	TorProxy    string
	VPNProxy    string
	TorSuffixes []string
	VPNSuffixes []string
	MatchMode   MatchKind
}

type OptionFunc func(conf *Config)

func WithTorProxy(uri string) OptionFunc {
	return func(c *Config) {
		c.TorProxy = uri
	}
}

func WithVPNProxy(uri string) OptionFunc {
	return func(c *Config) {
		c.VPNProxy = uri
	}
}

func WithTorSuffixes(suffixes ...string) OptionFunc {
	return func(c *Config) {
		c.TorSuffixes = append([]string(nil), suffixes...)
	}
}

func WithVPNSuffixes(suffixes ...string) OptionFunc {
	return func(c *Config) {
		c.VPNSuffixes = append([]string(nil), suffixes...)
	}
}

func WithMatchMode(mode MatchKind) OptionFunc {
	return func(c *Config) {
		c.MatchMode = mode
	}
}

// DefaultConfig returns a fresh copy of the built-in routing setup.
func DefaultConfig() Config {
	return Config{
		TorProxy:    DefaultTorProxy,
		VPNProxy:    DefaultVPNProxy,
		TorSuffixes: []string{".onion"},
		VPNSuffixes: []string{"domain.com", "domain2.com", "reddit.com"},
		MatchMode:   MatchSuffix,
	}
}

func NewConfig(opts ...OptionFunc) Config {
	conf := DefaultConfig()
	for _, opt := range opts {
		opt(&conf)
	}
	return conf
}
