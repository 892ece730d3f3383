package report

import (
	"strings"
	"time"
)

// Accepted date spellings, most specific first. Values without an offset
// are read as UTC; values with one are converted to UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDay renders s as DD/MM/YYYY, "" when s is empty or unparseable.
func FormatDay(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return t.Format("02/01/2006")
}

// FormatMonthYear renders s as MM/YYYY, "" when s is empty or unparseable.
func FormatMonthYear(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return t.Format("01/2006")
}

// FormatYear renders s as YYYY. A bare four-digit year passes through.
func FormatYear(s string) string {
	s = strings.TrimSpace(s)
	if isYear(s) {
		return s
	}
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return t.Format("2006")
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
