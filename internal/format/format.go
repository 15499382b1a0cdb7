/*
* Utility functions for formatting output.
 */
package format

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Print string with max length, truncating with ellipsis.
func Abbrev(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max-1]) + "…"
}

func GitEmail(email string) string {
	return fmt.Sprintf("<%s>", email)
}

// Formats a count with thousands separators.
func Number(n int) string {
	return humanize.Comma(int64(n))
}

// Formats n followed by the right form of noun, e.g. "1 commit", "2 commits".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%s %s", Number(n), noun)
	}

	return fmt.Sprintf("%s %ss", Number(n), noun)
}
