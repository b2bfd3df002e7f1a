// Package config loads the startup configuration from defaults, an
// optional YAML file and HOSTROUTE_* environment variables.
package config

import (
	"net/url"
	"strings"

	"github.com/miekg/dns"
	"github.com/samber/oops"
	"github.com/spf13/viper"

	"github.com/tiqio/hostroute/log"
	"github.com/tiqio/hostroute/router"
)

const EnvPrefix = "HOSTROUTE"

const (
	KeyTorProxy    = "upstream.tor"
	KeyVPNProxy    = "upstream.vpn"
	KeyTorSuffixes = "rules.tor_suffixes"
	KeyVPNSuffixes = "rules.vpn_suffixes"
	KeyMatchMode   = "rules.match_mode"

	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyLogMaxSize    = "log.max_size"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age"
	KeyLogCompress   = "log.compress"
)

var proxySchemes = map[string]bool{
	"socks5":  true,
	"socks5h": true,
	"socks4":  true,
	"socks4a": true,
	"http":    true,
	"https":   true,
}

type Config struct {
	Router router.Config
	Log    log.Options
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func SetDefaults(v *viper.Viper) {
	rc := router.DefaultConfig()
	v.SetDefault(KeyTorProxy, rc.TorProxy)
	v.SetDefault(KeyVPNProxy, rc.VPNProxy)
	v.SetDefault(KeyTorSuffixes, rc.TorSuffixes)
	v.SetDefault(KeyVPNSuffixes, rc.VPNSuffixes)
	v.SetDefault(KeyMatchMode, rc.MatchMode.String())

	lo := log.DefaultOptions
	v.SetDefault(KeyLogLevel, lo.Level)
	v.SetDefault(KeyLogFormat, lo.Format)
	v.SetDefault(KeyLogFile, lo.File)
	v.SetDefault(KeyLogMaxSize, lo.MaxSize)
	v.SetDefault(KeyLogMaxBackups, lo.MaxBackups)
	v.SetDefault(KeyLogMaxAge, lo.MaxAge)
	v.SetDefault(KeyLogCompress, lo.Compress)
}

// Load reads path (skipped when empty) into v and builds the validated
// configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, oops.In("config").With("path", path).Wrapf(err, "read config file")
		}
	}

	mode, err := router.ParseMatchKind(v.GetString(KeyMatchMode))
	if err != nil {
		return nil, oops.In("config").With("key", KeyMatchMode).Wrap(err)
	}

	conf := &Config{
		Router: router.Config{
			TorProxy:    strings.TrimSpace(v.GetString(KeyTorProxy)),
			VPNProxy:    strings.TrimSpace(v.GetString(KeyVPNProxy)),
			TorSuffixes: stringList(v, KeyTorSuffixes),
			VPNSuffixes: stringList(v, KeyVPNSuffixes),
			MatchMode:   mode,
		},
		Log: log.Options{
			Level:      v.GetString(KeyLogLevel),
			Format:     v.GetString(KeyLogFormat),
			File:       v.GetString(KeyLogFile),
			MaxSize:    v.GetInt(KeyLogMaxSize),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
			MaxAge:     v.GetInt(KeyLogMaxAge),
			Compress:   v.GetBool(KeyLogCompress),
		},
	}

	if err := validateProxy(KeyTorProxy, conf.Router.TorProxy); err != nil {
		return nil, err
	}
	if err := validateProxy(KeyVPNProxy, conf.Router.VPNProxy); err != nil {
		return nil, err
	}
	if err := validateSuffixes(KeyTorSuffixes, conf.Router.TorSuffixes); err != nil {
		return nil, err
	}
	if err := validateSuffixes(KeyVPNSuffixes, conf.Router.VPNSuffixes); err != nil {
		return nil, err
	}

	return conf, nil
}

// An empty URI is allowed: that upstream is then reached directly.
func validateProxy(key, uri string) error {
	if uri == "" {
		return nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return oops.In("config").With("key", key).Wrapf(err, "parse upstream uri")
	}
	if !proxySchemes[strings.ToLower(u.Scheme)] {
		return oops.In("config").With("key", key, "scheme", u.Scheme).Errorf("unsupported upstream scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return oops.In("config").With("key", key).Errorf("upstream uri %q has no host", uri)
	}
	return nil
}

// stringList reads a list key. Environment values arrive as one string, so
// every element is also split on commas and empty pieces are dropped.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func validateSuffixes(key string, suffixes []string) error {
	for i, s := range suffixes {
		name := router.NormalizeHost(s)
		if name == "" {
			return oops.In("config").With("key", key, "index", i).Errorf("empty suffix")
		}
		if _, ok := dns.IsDomainName(strings.TrimPrefix(name, ".")); !ok || strings.ContainsAny(name, " \t") {
			return oops.In("config").With("key", key, "index", i, "suffix", s).Errorf("invalid suffix %q", s)
		}
	}
	return nil
}
