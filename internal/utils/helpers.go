package utils

import (
	"strings"
	"time"
)

// MaskTail hides all but the last n characters of s, e.g. "****6789".
func MaskTail(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if n < 0 {
		n = 0
	}
	r := []rune(s)
	if len(r) <= n {
		return "****"
	}
	return "****" + string(r[len(r)-n:])
}

// ParseYMD parses a strict yyyy-mm-dd date.
func ParseYMD(s string) (time.Time, bool) {
	if len(s) != len("2006-01-02") {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FirstNonEmpty returns the first argument that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
