// utils/validator.go - Input validation
package utils

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail trims and lowercases an address before it is stored or compared
func NormalizeEmail(email string) string {
	return strings.ToLower(SanitizeInput(email))
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 72 {
		return false, "Password must be at most 72 characters"
	}

	return true, ""
}

// ValidateURL accepts empty values and absolute http(s) links
func ValidateURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// MaxLength reports whether s has at most n characters
func MaxLength(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove null bytes first so spaces next to them are trimmed too
	input = strings.ReplaceAll(input, "\x00", "")

	return strings.TrimSpace(input)
}
