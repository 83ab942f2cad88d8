package utils

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// digits with an optional leading '+', E.164 length bounds
	mobileRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	// characters people type between digit groups
	separatorRegex = regexp.MustCompile(`[\s\-().]`)
)

var (
	ErrEmptyMobileNumber   = errors.New("mobile number cannot be empty")
	ErrInvalidMobileNumber = errors.New("invalid mobile number format")
)

// NormalizeMobileNumber strips separators (spaces, hyphens, dots, parentheses)
// and returns the digits, keeping a leading '+' for international numbers.
func NormalizeMobileNumber(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyMobileNumber
	}

	normalized := separatorRegex.ReplaceAllString(trimmed, "")
	if !mobileRegex.MatchString(normalized) {
		return "", ErrInvalidMobileNumber
	}
	return normalized, nil
}

// IsMobileNumber reports whether raw normalizes cleanly
func IsMobileNumber(raw string) bool {
	_, err := NormalizeMobileNumber(raw)
	return err == nil
}

// MaskMobileNumber hides all but the last four digits, for logs.
// Example: "+6281234567890" -> "**********7890"
func MaskMobileNumber(number string) string {
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
