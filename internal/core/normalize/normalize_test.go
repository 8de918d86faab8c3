package normalize

import (
	"strings"
	"testing"
)

func TestLine_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"identity ascii", "Ada Lovelace", "Ada Lovelace"},
		{"keeps case", "McDONALD", "McDONALD"},
		{"utf8 repair drops invalid bytes", string([]byte{0xff, 'A', 'd', 'a', 0x80}), "Ada"},
		{"strips zero widths", "A\u200bd\u200da", "Ada"},
		{"strips bidi override", "evil\u202etxt.exe", "eviltxt.exe"},
		{"nfc composes accents", "Jose\u0301", "Jos\u00e9"},
		{"collapses whitespace and newlines", "  Ada \t\n Lovelace  ", "Ada Lovelace"},
		{"drops controls", "Ada\x00\x07 L", "Ada L"},
		{"format only becomes empty", "\u200b\ufeff", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Line(tc.in)
			if got != tc.out {
				t.Fatalf("Line(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := Line(got); again != got {
				t.Fatalf("Line not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestText_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"crlf to lf", "hello\r\nworld", "hello\nworld"},
		{"bare cr to lf", "hello\rworld", "hello\nworld"},
		{"keeps inner spacing", "a  b\n  indented", "a  b\n  indented"},
		{"trims trailing spaces per line", "a   \nb\t", "a\nb"},
		{"caps blank runs", "a\n\n\n\n\nb", "a\n\n\nb"},
		{"trims edges", "\n\n  hi  \n\n", "hi"},
		{"keeps tabs inside", "col1\tcol2", "col1\tcol2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Text(tc.in)
			if got != tc.out {
				t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := Text(got); again != got {
				t.Fatalf("Text not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	clean := "plain text\r\nwith\ttabs \u00e9"
	if got := Sanitize(clean); got != clean {
		t.Fatalf("clean input altered: %q", got)
	}
	for in, want := range map[string]string{
		"a\x00b\x7fc\u0085d": "abcd",
		"ring\x07\xffing":    "ringing",
		"\x1b[31mred":        "[31mred",
	} {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizer_Concurrent(t *testing.T) {
	n := New()
	done := make(chan string, 16)
	for i := 0; i < cap(done); i++ {
		go func() { done <- n.Line(" Jose\u0301\u200b ") }()
	}
	for i := 0; i < cap(done); i++ {
		if got := <-done; !strings.EqualFold(got, "Jos\u00e9") {
			t.Fatalf("got %q", got)
		}
	}
}
