// ABOUTME: Logger construction for the CLI, HTTP server and MCP server.
// ABOUTME: Wraps charmbracelet/log with level parsing from configuration.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// ParseLevel accepts debug, info, warn or error. Empty means DefaultLevel.
func ParseLevel(s string) (log.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = DefaultLevel
	}
	switch s {
	case "debug", "info", "warn", "error":
		return log.ParseLevel(s)
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// New returns a timestamped logger writing to w at level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "fitness",
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
