// internal/app/system/normalize/normalize.go

// Package normalize trims and canonicalizes user-supplied strings before
// validation and storage. All functions treat whitespace-only input as empty.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims an account status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tier lowercases and trims a subscription tier string.
func Tier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Slug lowercases and trims a portfolio slug. Validation of the slug shape
// happens in inputval; this only canonicalizes case and whitespace.
func Slug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-text query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
