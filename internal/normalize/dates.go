package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/joseph-ayodele/personal-info-parser/internal/utils"
)

const canonicalDate = "2006-01-02"

// dateLayouts are tried in order; the first match wins. US month-first
// layouts precede European day-first ones, so 03/04/2020 reads as March 4.
var dateLayouts = []string{
	// US
	"01/02/2006", "1/2/2006", "01-02-2006", "1-2-2006", "01/02/06", "1/2/06",
	// ISO
	"2006-01-02", "2006-1-2", "2006/01/02", "2006/1/2", "20060102",
	// European
	"02.01.2006", "2.1.2006", "02/01/2006", "2/1/2006", "02-01-2006",
	// month names
	"January 2, 2006", "Jan 2, 2006", "January 2 2006", "Jan 2 2006",
	"2 January 2006", "2 Jan 2006", "02-Jan-2006", "02 Jan 2006", "Jan-02-2006",
}

var (
	reOrdinal    = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	reDigitsOnly = regexp.MustCompile(`^\d+$`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// StandardizeDate rewrites s to yyyy-mm-dd when one of the known layouts, or
// failing that a permissive parse, understands it. Otherwise s is returned
// unchanged. ok reports whether the result is strictly yyyy-mm-dd.
func StandardizeDate(s string) (string, bool) {
	if _, ok := utils.ParseYMD(s); ok {
		return s, true
	}
	v := reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
	if v == "" {
		return s, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil && plausibleYear(t) {
			return t.Format(canonicalDate), true
		}
	}

	if t, ok := permissiveParse(v); ok {
		return t.Format(canonicalDate), true
	}
	return s, false
}

// permissiveParse is the last resort. Bare numbers are rejected so a lone year
// or document fragment is never turned into a date.
func permissiveParse(v string) (time.Time, bool) {
	v = reOrdinal.ReplaceAllString(v, "$1")
	if reDigitsOnly.MatchString(v) {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(v, time.UTC)
	if err != nil || !plausibleYear(t) {
		return time.Time{}, false
	}
	return t, true
}

func plausibleYear(t time.Time) bool {
	return t.Year() >= 1900 && t.Year() <= 2100
}
