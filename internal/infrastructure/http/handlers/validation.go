package handlers

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Validation limits.
const (
	MaxEmailLength    = 254
	MaxPasswordLength = 128
	MaxNameLength     = 100
)

// namePolicy strips all markup from free-text profile fields, so stored
// values never carry script tags into a browser context.
var namePolicy = bluemonday.StrictPolicy()

// SanitizeEmail trims and lowercases email; returns empty if over max length.
func SanitizeEmail(email string) string {
	s := strings.TrimSpace(strings.ToLower(email))
	if len(s) > MaxEmailLength {
		return ""
	}
	return s
}

// SanitizePassword trims password; returns empty if over max length.
func SanitizePassword(password string) string {
	s := strings.TrimSpace(password)
	if len(s) > MaxPasswordLength {
		return ""
	}
	return s
}

// SanitizeName strips HTML from a profile name field and trims whitespace.
// When stripping would empty a non-empty value (the whole field was markup),
// the escaped original is kept instead so the field still round-trips, just
// never as live markup.
func SanitizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	s := strings.TrimSpace(namePolicy.Sanitize(trimmed))
	if s == "" && trimmed != "" {
		s = html.EscapeString(trimmed)
	}
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}
