package extract

import (
	"strconv"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ResolveTwoDigitYear maps 00-50 to 20xx and 51-99 to 19xx. Four-digit
// years pass through.
func ResolveTwoDigitYear(yy int) int {
	switch {
	case yy >= 100:
		return yy
	case yy <= 50:
		return 2000 + yy
	default:
		return 1900 + yy
	}
}

// CalendarDate returns midnight UTC of the calendar day t falls on in its own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// makeDate builds a UTC calendar date and rejects out-of-range components
// instead of letting time.Date normalize them.
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func parseISODate(text string, loc []int, _ time.Time) (Value, bool) {
	t, ok := makeDate(atoi(group(text, loc, 1)), time.Month(atoi(group(text, loc, 2))), atoi(group(text, loc, 3)))
	return Value{Date: t}, ok
}

func parseDayMonthNameYear(text string, loc []int, _ time.Time) (Value, bool) {
	// "15 Feb 10:30" is a day and a time, not a two-digit year.
	if strings.HasPrefix(after(text, loc), ":") {
		return Value{}, false
	}
	month := months[strings.ToLower(group(text, loc, 2))]
	year := ResolveTwoDigitYear(atoi(group(text, loc, 3)))
	t, ok := makeDate(year, month, atoi(group(text, loc, 1)))
	return Value{Date: t}, ok
}

func parseNumericDate(text string, loc []int, _ time.Time) (Value, bool) {
	year := ResolveTwoDigitYear(atoi(group(text, loc, 3)))
	t, ok := makeDate(year, time.Month(atoi(group(text, loc, 2))), atoi(group(text, loc, 1)))
	return Value{Date: t}, ok
}

// parseDayMonthName resolves a yearless "DD Mon" against ref: the year of
// ref, or the year before when that would put the date after ref.
func parseDayMonthName(text string, loc []int, ref time.Time) (Value, bool) {
	if ref.IsZero() {
		return Value{}, false
	}
	month := months[strings.ToLower(group(text, loc, 2))]
	day := atoi(group(text, loc, 1))
	refDate := CalendarDate(ref)

	t, ok := makeDate(refDate.Year(), month, day)
	if ok && t.After(refDate) {
		t, ok = makeDate(refDate.Year()-1, month, day)
	}
	return Value{Date: t}, ok
}
