package render

import (
	"strings"
	"testing"
	"time"

	"contactgate/internal/core/contact"
	"contactgate/internal/platform/testkit"
)

func submission() contact.Submission {
	return contact.Submission{
		Payload: contact.Payload{
			Name:    `Eve <script>alert(1)</script>`,
			Email:   "eve@example.com",
			Message: "line one\n<b>bold?</b> & more",
		},
		ReferenceID: "MSG-ABC-0011AABB",
		ClientIP:    "203.0.113.9",
		ReceivedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRender_BothStylesEscapeHTML(t *testing.T) {
	t.Parallel()

	for _, style := range []Style{StyleCard, StyleMinimal} {
		t.Run(string(style), func(t *testing.T) {
			r, err := New(style, "")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			m, err := r.Render(submission())
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if strings.Contains(m.HTML, "<script>") || strings.Contains(m.HTML, "<b>bold?</b>") {
				t.Fatalf("user markup leaked into HTML:\n%s", m.HTML)
			}
			testkit.MustContain(t, m.HTML, "&lt;script&gt;")
			testkit.MustContain(t, m.HTML, "MSG-ABC-0011AABB")
			testkit.MustContain(t, m.HTML, "203.0.113.9")
		})
	}
}

func TestRender_TextAndSubject(t *testing.T) {
	t.Parallel()

	r, err := New(StyleCard, "[Site]")
	if err != nil {
		t.Fatal(err)
	}
	m, err := r.Render(submission())
	if err != nil {
		t.Fatal(err)
	}
	testkit.MustContain(t, m.Text, "Reference: MSG-ABC-0011AABB")
	testkit.MustContain(t, m.Text, "<b>bold?</b> & more")
	testkit.MustContain(t, m.Text, "Sat, 01 Mar 2025 12:00:00 UTC")
	if strings.Contains(m.Text, "Origin:") {
		t.Fatal("empty origin should be omitted")
	}
	if !strings.HasPrefix(m.Subject, "[Site] New message from Eve") {
		t.Fatalf("subject = %q", m.Subject)
	}
	if m.Submission.ReferenceID != "MSG-ABC-0011AABB" {
		t.Fatal("submission not carried")
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	r, err := New("", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if r.Style() != StyleCard {
		t.Fatalf("style = %q", r.Style())
	}
	if got := r.Subject(submission()); !strings.HasPrefix(got, DefaultSubjectPrefix+" ") {
		t.Fatalf("subject = %q", got)
	}
	if _, err := New("fancy", ""); err == nil {
		t.Fatal("unknown style must fail")
	}
}
