// ABOUTME: Tests for the calendar Date type.
// ABOUTME: Covers parsing, arithmetic and inclusive ranges.
package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2024-01-01", false},
		{"2024-02-29", false},
		{"2023-02-29", true},
		{"2024-1-1", true},
		{"01-01-2024", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDate(tt.input)
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("ParseDate(%q) error = %v, want ValidationError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if string(d) != tt.input {
				t.Errorf("ParseDate(%q) = %q", tt.input, d)
			}
		})
	}
}

func TestDateAddDays(t *testing.T) {
	d := Date("2024-02-28")
	if got := d.AddDays(1); got != "2024-02-29" {
		t.Errorf("AddDays(1) = %s, want 2024-02-29", got)
	}
	if got := d.AddDays(2); got != "2024-03-01" {
		t.Errorf("AddDays(2) = %s, want 2024-03-01", got)
	}
	if got := Date("2024-01-01").AddDays(-1); got != "2023-12-31" {
		t.Errorf("AddDays(-1) = %s, want 2023-12-31", got)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("test", 5*3600)
	ts := time.Date(2024, 6, 1, 1, 30, 0, 0, loc)
	if got := DateOf(ts); got != "2024-06-01" {
		t.Errorf("DateOf = %s, want 2024-06-01", got)
	}
}

func TestDatesBetween(t *testing.T) {
	dates := DatesBetween("2024-12-30", "2025-01-02")
	want := []Date{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}

	if got := DatesBetween("2024-01-02", "2024-01-01"); got != nil {
		t.Errorf("reversed range = %v, want nil", got)
	}
}
