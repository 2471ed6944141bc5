package validation

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const MinPasswordLength = 6

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword enforces the minimum password length.
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

// NormalizeCPF strips non-digits. Returns the 11-digit CPF and true, or
// ("", false) when the input does not reduce to exactly 11 digits.
func NormalizeCPF(cpf string) (string, bool) {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if len(normalized) != 11 {
		return "", false
	}
	return normalized, true
}
