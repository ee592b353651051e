// Package logging builds the structured logger shared by the CLI and engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "LOTTOSIM_LOG_LEVEL"

// DefaultLevel keeps the TUI quiet unless something goes wrong.
const DefaultLevel = "warn"

// New returns a logger writing to w at the given level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "lottosim",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

// ParseLevel parses a level name; empty means DefaultLevel.
func ParseLevel(level string) (log.Level, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// ResolveLevel picks the level from the environment, then value.
func ResolveLevel(value string) string {
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		return v
	}
	return value
}
