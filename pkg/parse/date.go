package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/Sriram-PR/sitemap-gen/pkg/models"
)

// w3cDatetime matches full W3C datetimes (minutes or seconds precision, optional fraction) with a zone designator
var w3cDatetime = regexp.MustCompile(`^\d{4}-[01]\d-[0-3]\dT[0-2]\d:[0-5]\d(:[0-5]\d(\.\d+)?)?([+-][0-2]\d:[0-5]\d|Z)$`)

// w3cDate matches the short YYYY-MM-DD form
var w3cDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// trailingFraction matches a ".963745" style fractional-seconds suffix
var trailingFraction = regexp.MustCompile(`\.\d+$`)

// w3cLayouts are used to check calendar validity of strings that already look like W3C datetimes
var w3cLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
}

// looseLayouts are tried in order for everything else; values without a zone are read as UTC
var looseLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// NormalizeDate canonicalises a lastmod value to a W3C datetime.
// The bool is false when the value is empty or unparseable; callers omit the field in that case.
func NormalizeDate(d models.Date) (string, bool) {
	if d.IsZero() {
		return "", false
	}
	if d.IsTime() {
		return NormalizeTime(d.Time())
	}
	return NormalizeDateString(d.Raw())
}

// NormalizeDateString canonicalises a date string.
// A bare "Z" and a trailing fractional-seconds suffix are stripped first; strings that then
// already look like W3C datetimes (or the short YYYY-MM-DD form) are returned as they are,
// provided the calendar values are real. Anything else is parsed and rendered in UTC.
func NormalizeDateString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	s = strings.Replace(s, "Z", "", 1)
	s = trailingFraction.ReplaceAllString(s, "")

	if w3cDate.MatchString(s) {
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return "", false
		}
		return s, true
	}
	if w3cDatetime.MatchString(s) {
		for _, layout := range w3cLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return s, true
			}
		}
		return "", false
	}

	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeTime(t)
		}
	}
	return "", false
}

// NormalizeTime renders t in UTC as YYYY-MM-DDTHH:MM:SS+00:00. The zero time is rejected.
func NormalizeTime(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return t.UTC().Format("2006-01-02T15:04:05") + "+00:00", true
}
