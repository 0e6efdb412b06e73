package contact

import (
	"regexp"
	"strings"
	"unicode"
)

// minPhoneDigits is the shortest subscriber number accepted as a phone.
const minPhoneDigits = 10

var emailFull = regexp.MustCompile(`(?i)^` + emailExpr + `$`)

// NormalizePhone keeps digits and a leading '+', then applies the first matching rule:
//
//	8XXXXXXXXXX  (11 digits)  -> +7XXXXXXXXXX
//	7XXXXXXXXXX  (11 digits)  -> +7XXXXXXXXXX
//	+7XXXXXXXXXX (12 chars)   -> unchanged
//	+375XXXXXXXXX (13 chars)  -> unchanged
//
// Anything else is returned as the stripped string. This is best effort, not E.164.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r == '+' && b.Len() == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "8") && len(digits) == 11:
		return "+7" + digits[1:]
	case strings.HasPrefix(digits, "7") && len(digits) == 11:
		return "+" + digits
	case strings.HasPrefix(digits, "+7") && len(digits) == 12:
		return digits
	case strings.HasPrefix(digits, "+375") && len(digits) == 13:
		return digits
	default:
		return digits
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimFunc(raw, unicode.IsSpace))
}

// ValidPhone reports whether a normalized phone carries enough digits to dial.
func ValidPhone(phone string) bool {
	return len(strings.TrimPrefix(phone, "+")) >= minPhoneDigits
}

// ValidEmail reports whether a normalized address is a single well-formed e-mail.
func ValidEmail(email string) bool {
	return emailFull.MatchString(email)
}
