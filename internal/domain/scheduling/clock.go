package scheduling

import (
	"regexp"
	"strings"
	"time"
)

// Canonical appointment times are minute-resolution, timezone-naive strings
// of the form "2006-01-02 15:04". NormalizeTime is deliberately permissive:
// it only reformats and truncates, so that stored data written by older
// clients still round-trips. Callers handling user input must gate on
// ValidTimeString first — the conflict checker assumes its candidate has
// already been validated.

var timePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}$`)

// ValidTimeString reports whether raw is an acceptable user-supplied
// appointment time ("YYYY-MM-DD HH:MM", with space or T separator).
func ValidTimeString(raw string) bool {
	return timePattern.MatchString(strings.TrimSpace(raw))
}

// NormalizeTime reformats raw into the canonical form: trimmed, T replaced
// by a space, truncated to minute resolution. It never fails.
func NormalizeTime(raw string) string {
	s := strings.Replace(strings.TrimSpace(raw), "T", " ", 1)
	if len(s) > 16 {
		s = s[:16]
	}
	return s
}

// ParseTime parses a canonical time string as wall-clock time with no
// timezone conversion.
func ParseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", NormalizeTime(s))
}

// EpochMinutes converts a parsed canonical time into minutes for distance
// comparison. Only differences between two values are meaningful.
func EpochMinutes(t time.Time) int64 {
	return t.Unix() / 60
}
