// Package dates provides canonical date parsing helpers.
//
// Task dates are plain YYYY-MM-DD days; CLI arguments additionally accept
// the relative keywords today/yesterday/tomorrow. Keeping this in one place
// avoids duplicating parsing between the task parser and the CLI filters.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValid checks if a string is a valid YYYY-MM-DD date.
func IsValid(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Parse parses a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !IsValid(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.Parse("2006-01-02", s)
}

// ParseArg parses a CLI date argument which can be:
// - "today", "yesterday", "tomorrow" (relative dates)
// - "YYYY-MM-DD" format (absolute date)
// - Empty string defaults to now
func ParseArg(arg string, now time.Time) (time.Time, error) {
	if arg == "" {
		return now, nil
	}

	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	default:
		parsed, err := Parse(arg)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date format '%s', use YYYY-MM-DD or today/yesterday/tomorrow", arg)
		}
		return parsed, nil
	}
}
