package extract

import (
	"strings"
	"time"
	"unicode"
)

// parseUPI accepts handle@bank and rejects e-mail addresses such as
// name@gmail.com, where the handle is followed by a domain suffix.
func parseUPI(text string, loc []int, _ time.Time) (Value, bool) {
	rest := after(text, loc)
	if len(rest) >= 2 && rest[0] == '.' && unicode.IsLetter(rune(rest[1])) {
		return Value{}, false
	}
	return Value{Text: strings.ToLower(text[loc[2]:loc[1]])}, true
}

func parseMobile(text string, loc []int, _ time.Time) (Value, bool) {
	m := group(text, loc, 1)
	if len(m) != 10 {
		return Value{}, false
	}
	return Value{Text: m}, true
}

// NormalizePhone reduces a phone number to its 10-digit national form by
// dropping non-digits and the +91, 91 or 0 prefix. It returns "" when the
// result is not 10 digits.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return ""
	}
	return digits
}
