// ABOUTME: Shared helpers for CLI commands.
// ABOUTME: Date and time flag parsing plus table formatting.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/fitness/internal/models"
)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// diaryDate parses a --date flag, defaulting to today.
func diaryDate(s string) (models.Date, error) {
	if s == "" {
		return tracker.Today(), nil
	}
	return models.ParseDate(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// kcal formats an energy value with thousands separators.
func kcal(v float64) string {
	return humanize.FormatFloat("#,###.#", v) + " kcal"
}

func grams(v float64) string {
	return humanize.FormatFloat("#,###.#", v) + "g"
}

func faintID(id uuid.UUID) string {
	return color.New(color.Faint).Sprint(id.String()[:8])
}

func header(format string, args ...any) {
	color.New(color.Bold).Printf(format+"\n", args...)
}
