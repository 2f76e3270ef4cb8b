package guests

import (
	"regexp"
	"strings"
	"unicode"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// NormalizeDigits maps Arabic-Indic and Persian digits to ASCII
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

// NormalizePhone converts digits to ASCII and drops everything except digits.
// A '+' survives only as the first non-space character.
func NormalizePhone(s string) string {
	s = strings.TrimLeftFunc(NormalizeDigits(s), unicode.IsSpace)

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone accepts an optional leading '+' followed by 7 to 15 digits
func ValidPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

// ParseNames splits textarea input on newlines or '|', trimming blanks away
func ParseNames(text string) []string {
	pieces := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '|'
	})

	names := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if n := strings.TrimSpace(p); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// CountNames returns the number of names in textarea input
func CountNames(text string) int {
	return len(ParseNames(text))
}
