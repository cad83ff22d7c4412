package okta

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenIDPatterns are sequences that could steer a resource path at a
// different endpoint than intended: separators, traversal sequences, and
// their URL-encoded variants.
var forbiddenIDPatterns = []string{
	"/", "\\", "..", "?", "#",
	"%2f", "%5c", "%2e%2e",
}

// validIDPattern matches well-formed resource identifiers. Okta IDs are
// alphanumeric with occasional hyphens or underscores; user lookups may also
// use email addresses.
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-@.+]+$`)

// ValidateID rejects resource IDs containing path traversal or injection
// characters before they are interpolated into an API path. kind names the
// ID in error messages ("user ID", "policy rule ID", ...).
func ValidateID(value, kind string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}

	lower := strings.ToLower(value)
	for _, pattern := range forbiddenIDPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("invalid %s: contains forbidden character or pattern %q", kind, pattern)
		}
	}

	if !validIDPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: only alphanumerics, hyphens, underscores, at signs, dots and plus signs are allowed", kind)
	}

	return nil
}
