package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

type Config struct {
	Level  string
	Format string // "text", "json", "console"
	Output io.Writer
}

var (
	once sync.Once
	lg   *slog.Logger
)

func Init(cfg Config) {
	once.Do(func() {
		lg = slog.New(newHandler(cfg))
		slog.SetDefault(lg)
	})
}

func L() *slog.Logger {
	if lg == nil {
		Init(Config{Level: "debug", Format: "console"})
	}
	return lg
}

// Component returns the default logger tagged with a component name.
func Component(name string) *slog.Logger {
	return L().With("component", name)
}

// OpenOutput resolves a configured log destination. An empty path or "stdout"
// means standard output; anything else is appended to as a file.
func OpenOutput(path string) (io.WriteCloser, error) {
	switch path {
	case "", "stdout":
		return nopCloser{os.Stdout}, nil
	case "stderr":
		return nopCloser{os.Stderr}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newHandler(cfg Config) slog.Handler {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	level := parseLevel(cfg.Level)
	switch cfg.Format {
	case "json":
		return slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{Level: level})
	case "text":
		return slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{Level: level})
	default:
		return &consoleHandler{w: cfg.Output, mu: &sync.Mutex{}, level: level}
	}
}

func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// consoleHandler outputs human-friendly log lines:
//
//	12:00:00 INFO  scenario finished  ticks=600 bodies=3 pos=(1.250, 0.008, -4.000)
type consoleHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Level
	attrs []slog.Attr
	group string
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.Format(time.TimeOnly) // "15:04:05"
	lvl := levelTag(r.Level)

	line := fmt.Sprintf("%s %s %s", ts, lvl, r.Message)

	// pre-attached attrs (from WithAttrs)
	for _, a := range h.attrs {
		line += formatAttr(h.group, a)
	}
	// per-record attrs
	r.Attrs(func(a slog.Attr) bool {
		line += formatAttr(h.group, a)
		return true
	})

	line += "\n"
	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}
	_, err := fmt.Fprint(h.w, line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		w:     h.w,
		mu:    h.mu,
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		group: h.group,
	}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	prefix := name
	if h.group != "" {
		prefix = h.group + "." + name
	}
	return &consoleHandler{
		w:     h.w,
		mu:    h.mu,
		level: h.level,
		attrs: append([]slog.Attr{}, h.attrs...),
		group: prefix,
	}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN "
	case l >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatAttr(group string, a slog.Attr) string {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	return fmt.Sprintf("  %s=%s", key, formatValue(a.Value))
}

// formatValue prints floats and vectors with millimetre precision.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindAny:
		if vec, ok := v.Any().(mgl64.Vec3); ok {
			return fmt.Sprintf("(%.3f, %.3f, %.3f)", vec.X(), vec.Y(), vec.Z())
		}
	}
	return v.String()
}
