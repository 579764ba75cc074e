package phone

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultCountryCode is prefixed onto bare national numbers. The store keys
// every user by the normalized form, so the rule must be applied before any
// lookup.
const DefaultCountryCode = "+91"

// Normalize canonicalizes a mobile number: strips spaces and dashes and
// prefixes DefaultCountryCode when no country code is present.
func Normalize(mobile string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(mobile) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
			// separators are dropped
		default:
			return "", fmt.Errorf("invalid character %q in mobile number", r)
		}
	}
	n := b.String()
	if strings.HasPrefix(n, "+") {
		if len(n) < 8 {
			return "", fmt.Errorf("mobile number too short")
		}
		return n, nil
	}
	// Legacy rows stored 10-digit national numbers; anything longer already
	// carries a country code without the plus.
	if len(n) == 10 {
		return DefaultCountryCode + n, nil
	}
	if len(n) >= 11 && len(n) <= 15 {
		return "+" + n, nil
	}
	return "", fmt.Errorf("mobile number must be 10-15 digits")
}
