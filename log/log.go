package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	slogformatter "github.com/samber/slog-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

var DefaultOptions = Options{
	Level:      "info",
	Format:     "text",
	MaxSize:    50,
	MaxBackups: 3,
	MaxAge:     28,
}

var (
	logger atomic.Pointer[slog.Logger]

	mu     sync.Mutex
	closer io.Closer
)

func init() {
	logger.Store(newLogger(os.Stderr, slog.LevelInfo, false))
}

// Init replaces the process logger. A non-empty File sends output to a
// rotating file instead of stderr.
func Init(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	var json bool
	switch strings.ToLower(opts.Format) {
	case "", "text":
	case "json":
		json = true
	default:
		return oops.In("log").With("format", opts.Format).Errorf("unknown log format %q", opts.Format)
	}

	var w io.Writer = os.Stderr
	var c io.Closer
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		w, c = lj, lj
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = c
	logger.Store(newLogger(w, level, json))
	return nil
}

func newLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	h = slogformatter.NewFormatterHandler(
		slogformatter.ErrorFormatter("err"),
		slogformatter.TimeFormatter(time.DateTime, time.Local),
	)(h)
	return slog.New(h)
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, oops.In("log").With("level", s).Wrapf(err, "parse log level")
	}
	return level, nil
}

// Close flushes and releases the log file, if any. Later records go to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	logger.Store(newLogger(os.Stderr, slog.LevelInfo, false))
	return err
}

func Logger() *slog.Logger {
	return logger.Load()
}

// With attaches attributes to every later record of the process logger.
func With(args ...any) {
	logger.Store(logger.Load().With(args...))
}

func Debug(msg string, args ...any) {
	logger.Load().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	logger.Load().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	logger.Load().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	logger.Load().Error(msg, args...)
}
