package strings

import (
	"testing"
	"unicode/utf8"

	kit "contactgate/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	got := IfEmpty([]int{1, 2, 3}, []int{9})
	if len(got) != 3 || got[0] != 1 {
		t.Fatalf("IfEmpty returned wrong slice: %#v", got)
	}
	var empty []string
	got2 := IfEmpty(empty, []string{"x"})
	if len(got2) != 1 || got2[0] != "x" {
		t.Fatalf("IfEmpty did not return default: %#v", got2)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()
	if got := FirstNonEmpty("", "  ", "b", "c"); got != "b" {
		t.Fatalf("FirstNonEmpty = %q", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	t.Parallel()
	if MustString("x", "name") != "x" {
		t.Fatalf("MustString should return input")
	}
	kit.MustPanic(t, func() { _ = MustString("  ", "name") })
}

func TestMustPrefix(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"contact":    "/contact",
		"/contact/":  "/contact",
		" /meta ":    "/meta",
		"//api/v1//": "/api/v1",
	}
	for in, want := range cases {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q, want %q", in, got, want)
		}
	}
	kit.MustPanic(t, func() { _ = MustPrefix(" / ") })
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"héllo wörld", 6, "héllo…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		got := Truncate(tc.in, tc.max)
		if got != tc.want {
			t.Fatalf("Truncate(%q,%d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
		if tc.max > 0 && utf8.RuneCountInString(got) > tc.max {
			t.Fatalf("Truncate exceeded max for %q", tc.in)
		}
	}
}
