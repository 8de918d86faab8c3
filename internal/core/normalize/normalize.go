// Package normalize cleans user supplied contact text before it is validated or rendered
// Pipeline order
// 1 drop control bytes and invalid UTF-8 (Sanitize)
// 2 Unicode NFC composition
// 3 remove format characters (zero-widths, bidi overrides, BOM)
// 4 line endings to \n, then Line collapses all whitespace while Text keeps line breaks
// 5 trim
//
// There is no case or width folding: what the visitor typed is what the recipient reads.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is concurrency safe; transformer chains are pooled
type Normalizer struct{}

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
		)
	},
}

var std = New()

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Line normalizes a single line field such as a name or an address
func Line(s string) string { return std.Line(s) }

// Text normalizes a multi-line field such as a message body
func Text(s string) string { return std.Text(s) }

// Line returns s with every whitespace run collapsed to one space
func (n *Normalizer) Line(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(n.base(s)), " ")
}

// Text returns s with \n line endings, trailing spaces removed per line,
// at most two consecutive blank lines, and edges trimmed
func (n *Normalizer) Text(s string) string {
	if s == "" {
		return ""
	}
	s = n.base(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := 0
	for _, ln := range lines {
		ln = strings.TrimRightFunc(ln, unicode.IsSpace)
		if ln == "" {
			blank++
			if blank > 2 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func (n *Normalizer) base(s string) string {
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return s
	}
	return ns
}
