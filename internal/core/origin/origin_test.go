package origin

import (
	"net/http"
	"testing"
)

func gate() *Gate {
	return New([]string{
		"https://example.com",
		"http://localhost:4321",
		"https://*.portfolio.pages.dev",
	}, "https://example.com")
}

func TestIsAllowed(t *testing.T) {
	t.Parallel()

	g := gate()
	cases := []struct {
		origin string
		want   bool
	}{
		{"https://example.com", true},
		{"HTTPS://EXAMPLE.COM", true},
		{"https://example.com/", true},
		{"http://localhost:4321", true},
		{"http://localhost:4322", false},
		{"http://example.com", false},
		{"https://abc123.portfolio.pages.dev", true},
		{"https://ABC-123.Portfolio.Pages.Dev", true},
		{"https://a.b.portfolio.pages.dev", false},
		{"https://portfolio.pages.dev", false},
		{"https://evilportfolio.pages.dev", false},
		{"https://abc.portfolio.pages.dev.evil.com", false},
		{"", false},
		{"null", false},
		{"ftp://example.com", false},
		{"https://user@example.com", false},
	}
	for _, tc := range cases {
		if got := g.IsAllowed(tc.origin); got != tc.want {
			t.Errorf("IsAllowed(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}

func TestApply_EchoesOrFallsBack(t *testing.T) {
	t.Parallel()

	g := gate()

	h := g.Headers("https://abc.portfolio.pages.dev")
	if got := h.Get("Access-Control-Allow-Origin"); got != "https://abc.portfolio.pages.dev" {
		t.Fatalf("allowed origin not echoed: %q", got)
	}

	h = g.Headers("https://attacker.test")
	if got := h.Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("fallback = %q", got)
	}

	h = g.Headers("")
	if h.Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("allow origin must never be empty")
	}
	if h.Get("Access-Control-Allow-Methods") != "POST, OPTIONS" ||
		h.Get("Access-Control-Allow-Headers") != "Content-Type" ||
		h.Get("Access-Control-Max-Age") != "86400" {
		t.Fatalf("unexpected headers: %v", h)
	}
}

func TestApply_VaryOnce(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Add("Vary", "Accept-Encoding")
	g := gate()
	g.Apply(h, "https://example.com")
	g.Apply(h, "https://example.com")

	vals := h.Values("Vary")
	if len(vals) != 2 || vals[1] != "Origin" {
		t.Fatalf("Vary = %v", vals)
	}
}

func TestFallbackSelection(t *testing.T) {
	t.Parallel()

	if f := New([]string{"https://*.x.dev", "https://B.example"}, "").Fallback(); f != "https://b.example" {
		t.Fatalf("first exact entry expected, got %q", f)
	}
	if f := New(nil, "").Fallback(); f != "null" {
		t.Fatalf("empty allowlist fallback = %q", f)
	}
	if f := New(nil, "https://Site.Example/").Fallback(); f != "https://site.example" {
		t.Fatalf("explicit fallback = %q", f)
	}
}
