package configs

import (
	"io"
	"log/slog"
	"strings"
)

// Logger selects the slog handler. Level accepts anything slog.Level parses
// ("debug", "info", "warn", "error", "warn+2"); Format is "text" or "json".
type Logger struct {
	Level     string `env:"LEVEL" envDefault:"info"`
	Format    string `env:"FORMAT" envDefault:"text"`
	AddSource bool   `env:"ADD_SOURCE" envDefault:"false"`
}

// level falls back to info for values slog cannot parse.
func (c Logger) level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewHandler builds the handler writing to w.
func (c Logger) NewHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.level(), AddSource: c.AddSource}
	if strings.EqualFold(c.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
