// ABOUTME: Calendar date type used as the diary key.
// ABOUTME: Dates are serialized as YYYY-MM-DD strings and compare lexically.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used for diary keys.
const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form.
type Date string

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return Date(t.Format(DateLayout)), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Today returns the local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// Time returns midnight UTC of the date. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Valid reports whether d parses as a calendar date.
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

func (d Date) String() string {
	return string(d)
}

// DatesBetween returns every date from start to end inclusive, in order.
// It returns nil when end is before start.
func DatesBetween(start, end Date) []Date {
	if end < start {
		return nil
	}
	var dates []Date
	for d := start; d <= end; d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}
