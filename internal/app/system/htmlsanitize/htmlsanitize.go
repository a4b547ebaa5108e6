// Package htmlsanitize strips markup from user-supplied text before it is
// echoed back in responses or notification headers.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// PlainText removes every tag from s and returns unescaped text, so
// "<b>Tom</b> & Jerry" becomes "Tom & Jerry".
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy().Sanitize(s)))
}

// IsPlainText reports whether s contains no markup at all.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<")
}
