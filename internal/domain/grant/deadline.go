package grant

import (
	"strconv"
	"strings"
	"time"
)

// UnspecifiedLabel is the display value the grant store uses for a missing deadline.
const UnspecifiedLabel = "Ej specificerat"

// Deadline is a calendar date or the "unspecified" sentinel.
type Deadline struct {
	date time.Time
	ok   bool
}

// Unspecified returns the sentinel for a missing or unparseable date.
func Unspecified() Deadline { return Deadline{} }

// DateOf creates a Deadline on the calendar day of t (UTC).
func DateOf(t time.Time) Deadline {
	return Deadline{date: truncateDay(t), ok: true}
}

// Specified reports whether the deadline holds a real date.
func (d Deadline) Specified() bool { return d.ok }

// Time returns the date at 00:00 UTC and whether it is specified.
func (d Deadline) Time() (time.Time, bool) { return d.date, d.ok }

// String returns the ISO date or the unspecified label.
func (d Deadline) String() string {
	if !d.ok {
		return UnspecifiedLabel
	}
	return d.date.Format(time.DateOnly)
}

var monthNames = map[string]time.Month{
	"januari": time.January, "january": time.January, "jan": time.January,
	"februari": time.February, "february": time.February, "feb": time.February,
	"mars": time.March, "march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"maj": time.May, "may": time.May,
	"juni": time.June, "june": time.June, "jun": time.June,
	"juli": time.July, "july": time.July, "jul": time.July,
	"augusti": time.August, "august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "october": time.October, "okt": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var unspecifiedValues = map[string]struct{}{
	"":                {},
	"ej specificerat": {},
	"not specified":   {},
	"unspecified":     {},
	"löpande":         {},
	"ongoing":         {},
}

var isoLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDeadline parses ISO dates, RFC3339 timestamps and "15 mars 2025" style dates
// (Swedish or English month names). Everything else is unspecified.
func ParseDeadline(s string) Deadline {
	s = strings.TrimSpace(s)
	if _, ok := unspecifiedValues[strings.ToLower(s)]; ok {
		return Unspecified()
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}

	return parseDayMonthYear(s)
}

func parseDayMonthYear(s string) Deadline {
	parts := strings.Fields(strings.ToLower(strings.ReplaceAll(s, ",", " ")))
	if len(parts) < 3 {
		return Unspecified()
	}

	day, err := strconv.Atoi(strings.TrimSuffix(parts[0], "."))
	if err != nil {
		return Unspecified()
	}
	month, ok := monthNames[parts[1]]
	if !ok {
		return Unspecified()
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return Unspecified()
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject overflowed dates such as "31 februari".
	if t.Day() != day || t.Month() != month {
		return Unspecified()
	}
	return Deadline{date: t, ok: true}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now (UTC).
func Today(now time.Time) time.Time { return truncateDay(now) }
