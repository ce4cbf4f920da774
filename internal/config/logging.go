package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// NewLogger fans records out to a text handler on out at the configured level
// and a JSON handler on errOut for errors only.
func NewLogger(level string, out, errOut io.Writer) *slog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}),
		slog.NewJSONHandler(errOut, &slog.HandlerOptions{Level: slog.LevelError}),
	))
}
