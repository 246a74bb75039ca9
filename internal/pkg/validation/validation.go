package validation

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Name: letters, spaces, hyphens, apostrophes only.
var nameRe = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

// Symbols: 1-12 uppercase letters/digits, dots and hyphens allowed (BRK.B, BTC-USD).
var symbolRe = regexp.MustCompile(`^[A-Z0-9.\-]{1,12}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least 8 characters with a letter, a number and
// a special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidName(name string) bool {
	return name != "" && nameRe.MatchString(name)
}

// NormalizeSymbol canonicalizes a ticker for catalog lookup (uppercase, trimmed).
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func IsValidSymbol(symbol string) bool {
	return symbolRe.MatchString(NormalizeSymbol(symbol))
}

// IsValidQuantity accepts strictly positive finite numbers. Fractional
// quantities are allowed; NaN/Inf from loosely-typed payloads are not.
func IsValidQuantity(quantity float64) bool {
	return quantity > 0 && !math.IsInf(quantity, 0) && !math.IsNaN(quantity)
}
