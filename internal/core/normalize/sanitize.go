package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// control matches C0, DEL and C1 controls except tab and line breaks
func control(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return unicode.IsControl(r)
}

func dropControl(r rune) rune {
	if control(r) {
		return -1
	}
	return r
}

// Sanitize drops invalid UTF-8 and control characters a rendered notification
// must never carry. Clean input is returned unchanged.
func Sanitize(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, control) < 0 {
		return s
	}
	return strings.Map(dropControl, strings.ToValidUTF8(s, ""))
}
