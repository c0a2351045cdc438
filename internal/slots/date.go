package slots

import (
	"strings"
	"time"
)

// Slot dates are entered as "<day> <Month>" with no year, e.g. "4 July".
// The calendar year is supplied by the caller as an explicit reference year;
// a string from last year and one from next year are indistinguishable, so
// whether slots may span a year boundary is an open product question and is
// not guessed here.
const (
	parseLayout   = "2 January 2006"
	displayLayout = "2 January"
)

// DateClass classifies a slot date relative to a reference instant
type DateClass int

const (
	// DateInvalid marks a date that could not be parsed
	DateInvalid DateClass = iota
	// DatePast is strictly before the start of the reference day
	DatePast
	// DateToday falls on the reference calendar day
	DateToday
	// DateFuture is after the reference calendar day
	DateFuture
)

// NormalizeDate capitalizes the first letter of each space-separated word so
// lowercase month entry ("4 july") parses like "4 July".
func NormalizeDate(s string) string {
	words := strings.Split(strings.TrimSpace(s), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ParseDate parses a "<day> <Month>" string against the given reference
// year, in the given location. The result is the slot's midnight.
func ParseDate(s string, referenceYear int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	normalized := NormalizeDate(s)
	return time.ParseInLocation(parseLayout, normalized+" "+yearString(referenceYear), loc)
}

// FormatDate renders a parsed slot date back to its "<day> <Month>" form
func FormatDate(t time.Time) string {
	return t.Format(displayLayout)
}

// Classify parses the date with the year and location of now and places it
// relative to the start of now's calendar day.
func Classify(s string, now time.Time) DateClass {
	parsed, err := ParseDate(s, now.Year(), now.Location())
	if err != nil {
		return DateInvalid
	}

	today := StartOfDay(now)
	switch {
	case parsed.Before(today):
		return DatePast
	case parsed.Equal(today):
		return DateToday
	default:
		return DateFuture
	}
}

// StartOfDay truncates an instant to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func yearString(year int) string {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}
