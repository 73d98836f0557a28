// Package htmlsanitize strips unsafe HTML from user-supplied text before it
// is stored. Section and card free-text fields accept limited formatting; the
// policy allows common inline and block elements plus http(s) links and drops
// scripts, event handlers, and javascript: URLs.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Sanitize returns s with unsafe HTML removed. Safe formatting tags and
// https links are preserved; plain text passes through unchanged.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// StripTags removes all HTML, returning plain text. Used for fields that are
// rendered as text only (titles, labels, navbar branding).
var strict = bluemonday.StrictPolicy()

func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strict.Sanitize(s)
}
