package log

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestInitFile(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	path := filepath.Join(t.TempDir(), "hostroute.log")
	opts := DefaultOptions
	opts.File = path
	opts.Level = "debug"
	opts.Format = "json"
	require.NoError(t, Init(opts))

	Debug("[ROUTE] selected", "host", "example.onion", "upstream", "tor")
	Warn("[CONFIG] fallback", "err", errors.New("boom"))
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"[ROUTE] selected"`)
	assert.Contains(t, out, `"host":"example.onion"`)
	assert.Contains(t, out, "boom")
}

func TestInitLevelFilters(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	path := filepath.Join(t.TempDir(), "hostroute.log")
	require.NoError(t, Init(Options{Level: "warn", File: path}))

	Info("[ROUTE] hidden")
	Error("[ROUTE] shown")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestWith(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	path := filepath.Join(t.TempDir(), "hostroute.log")
	require.NoError(t, Init(Options{File: path}))
	With("run_id", "abc123")

	Info("[ROUTE] tagged")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id=abc123")
}

func TestInitRejectsBadOptions(t *testing.T) {
	assert.Error(t, Init(Options{Level: "verbose"}))
	assert.Error(t, Init(Options{Format: "xml"}))
}
