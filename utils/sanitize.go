package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// SanitizeName strips any HTML from a user-supplied display name. Plain file
// names pass through unchanged.
func SanitizeName(input string) string {
	return sanitizer.Sanitize(input)
}
