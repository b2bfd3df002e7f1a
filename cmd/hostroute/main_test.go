package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiqio/hostroute/log"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := execute(cmd)
	return out.String(), err
}

func TestResolve(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"resolve", "example.onion"}, "socks5://vpn-proxy:9150\n"},
		{[]string{"resolve", "EXAMPLE.ONION."}, "socks5://vpn-proxy:9150\n"},
		{[]string{"resolve", "www.reddit.com", "--user", "alice"}, "http://vpn-proxy:8888\n"},
		{[]string{"resolve", "example.net"}, "\n"},
		{[]string{"resolve", "", "fallback.domain2.com"}, "http://vpn-proxy:8888\n"},
		{[]string{"resolve", "--explain", "sub.domain.com"}, "vpn\thttp://vpn-proxy:8888\n"},
		{[]string{"resolve", "--explain", "golang.org"}, "direct\t\n"},
	}
	for _, tt := range tests {
		out, err := run(t, "", tt.args...)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want, out, tt.args)
	}
}

func TestResolveMatchModeFlag(t *testing.T) {
	out, err := run(t, "", "resolve", "evildomain.com")
	require.NoError(t, err)
	assert.Equal(t, "http://vpn-proxy:8888\n", out)

	out, err = run(t, "", "--match-mode", "label", "resolve", "evildomain.com")
	require.NoError(t, err)
	assert.Equal(t, "\n", out)
}

func TestResolveNeedsHost(t *testing.T) {
	_, err := run(t, "", "resolve")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	in := strings.Join([]string{
		"example.onion",
		"www.reddit.com",
		"",
		"- fallback.domain2.com",
		"example.net fallback.domain2.com bob",
	}, "\n")

	out, err := run(t, in, "check")
	require.NoError(t, err)

	want := strings.Join([]string{
		"socks5://vpn-proxy:9150",
		"http://vpn-proxy:8888",
		"",
		"http://vpn-proxy:8888",
		"",
	}, "\n") + "\n"
	assert.Equal(t, want, out)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostroute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
upstream:
  tor: socks5h://127.0.0.1:9050
rules:
  vpn_suffixes: [example.org]
`), 0o644))

	out, err := run(t, "", "--config", path, "resolve", "x.onion")
	require.NoError(t, err)
	assert.Equal(t, "socks5h://127.0.0.1:9050\n", out)

	out, err = run(t, "", "--config", path, "resolve", "www.example.org")
	require.NoError(t, err)
	assert.Equal(t, "http://vpn-proxy:8888\n", out)
}

func TestBadConfig(t *testing.T) {
	_, err := run(t, "", "--match-mode", "regex", "resolve", "example.net")
	assert.Error(t, err)
}

func TestRulesTable(t *testing.T) {
	out, err := run(t, "", "rules")
	require.NoError(t, err)

	for _, s := range []string{"PATTERN", ".onion", "reddit.com", "domain2.com", "socks5://vpn-proxy:9150", "default"} {
		assert.Contains(t, out, s)
	}
}

func TestRulesYAML(t *testing.T) {
	out, err := run(t, "", "rules", "-o", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "pattern: .onion")
	assert.Contains(t, out, "upstream: tor")
	assert.Contains(t, out, "match: suffix")
	assert.Contains(t, out, "uri: http://vpn-proxy:8888")
}

func TestRulesUnknownOutput(t *testing.T) {
	_, err := run(t, "", "rules", "-o", "xml")
	assert.Error(t, err)
}

func TestLogFileClosedAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostroute.log")

	_, err := run(t, "", "--log-file", path, "--log-level", "debug", "rules", "-o", "xml")
	require.Error(t, err)

	log.Info("[ROUTE] after run")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[CONFIG] loaded")
	assert.NotContains(t, string(data), "after run")
}
