package discord

import (
	"strings"
	"time"
)

var (
	fullLayouts = []string{
		"2006/01/02 15:04",
		"2006/1/2 15:04",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
	}
	shortLayouts = []string{
		"01/02 15:04",
		"1/2 15:04",
		"01-02 15:04",
	}
)

// NormalizeStartTime turns the free-form date string of a ticket
// ("10/25 13:00~", "2026/10/25 13:00") into an absolute instant in loc.
// ok is false when the string cannot be understood; reminders are then
// disabled for the ticket.
//
// Dates without a year resolve to the next occurrence relative to now, with
// one day of tolerance so a ticket for "today, a bit earlier" is not pushed
// to next year.
func NormalizeStartTime(s string, loc *time.Location, now time.Time) (time.Time, bool) {
	s = cleanDateString(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range fullLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	now = now.In(loc)
	for _, layout := range shortLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		dt := time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		if dt.Before(now.Add(-24 * time.Hour)) {
			dt = dt.AddDate(1, 0, 0)
		}
		return dt, true
	}
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
	}
	return time.Time{}, false
}

// cleanDateString drops range suffixes ("13:00~15:00") and normalizes
// full-width characters commonly typed by Japanese IMEs.
func cleanDateString(s string) string {
	s = strings.NewReplacer("～", "~", "〜", "~", "：", ":", "／", "/", "　", " ").Replace(s)
	if i := strings.Index(s, "~"); i >= 0 {
		s = s[:i]
	}
	return strings.Join(strings.Fields(s), " ")
}

func FormatEventDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006/01/02 15:04")
}
