// Package normalize canonicalizes user-supplied identity fields before
// they are stored or compared. Keeping the folding rules in one place
// means "Admin@Example.COM" and "admin@example.com" can never end up as
// two accounts.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// SplitName splits a display name on the first space: the first token
// becomes the first name, the remainder the last name.
func SplitName(display string) (first, last string) {
	display = strings.TrimSpace(display)
	if display == "" {
		return "", ""
	}
	parts := strings.SplitN(display, " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}
