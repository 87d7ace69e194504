// Package sanitize strips markup from free-text fields (names,
// category, mobile) before they are persisted. Category and profile
// values come back out of the API verbatim, so they must never carry
// script or markup.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
