package pending

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"contactgate/internal/core/contact"
	"contactgate/internal/platform/testkit"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func payload() contact.Payload {
	return contact.Payload{Name: "Tester", Email: "user@example.com", Message: "Hello", Token: "ignored"}
}

func storages(t *testing.T) map[string]Storage {
	t.Helper()
	dir, err := NewDir(filepath.Join(t.TempDir(), "session"))
	if err != nil {
		t.Fatalf("dir: %v", err)
	}
	return map[string]Storage{"memory": NewMemory(), "dir": dir}
}

func TestStore_RoundTripWithinTTL(t *testing.T) {
	t.Parallel()

	for name, st := range storages(t) {
		t.Run(name, func(t *testing.T) {
			clock := testkit.NewClock(t0)
			s := New(st, WithClock(clock))

			saved, err := s.Save(payload())
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			clock.Advance(14 * time.Minute)

			got, ok := s.Load()
			if !ok {
				t.Fatal("envelope missing within ttl")
			}
			if !got.CreatedAt.Equal(saved.CreatedAt) || !got.CreatedAt.Equal(t0) || got.Payload() != payload().WithoutToken() {
				t.Fatalf("got %+v, want %+v", got, saved)
			}
		})
	}
}

func TestStore_ExpiredIsAbsentAndCleared(t *testing.T) {
	t.Parallel()

	for name, st := range storages(t) {
		t.Run(name, func(t *testing.T) {
			clock := testkit.NewClock(t0)
			s := New(st, WithClock(clock))
			if _, err := s.Save(payload()); err != nil {
				t.Fatal(err)
			}

			clock.Advance(TTL + time.Millisecond)
			if _, ok := s.Load(); ok {
				t.Fatal("expired envelope returned")
			}
			if _, present, _ := st.Load(Key); present {
				t.Fatal("expired envelope left in storage")
			}
		})
	}
}

func TestStore_CorruptReadsAsAbsent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":        `{"name":`,
		"missing message": `{"name":"Tester","email":"user@example.com","createdAt":1740830400000}`,
		"missing created": `{"name":"Tester","email":"user@example.com","message":"Hello"}`,
		"wrong type":      `{"name":1,"email":"user@example.com","message":"Hello","createdAt":1740830400000}`,
	}
	for name, raw := range cases {
		st := NewMemory()
		_ = st.Save(Key, []byte(raw))
		s := New(st, WithClock(testkit.NewClock(t0)))

		testkit.MustNotPanic(t, func() {
			if _, ok := s.Load(); ok {
				t.Fatalf("%s: corrupt envelope accepted", name)
			}
		})
		if _, present, _ := st.Load(Key); present {
			t.Fatalf("%s: corrupt envelope not cleared", name)
		}
	}
}

func TestStore_DiscardAndKeys(t *testing.T) {
	t.Parallel()
	st := NewMemory()
	a := New(st, WithKey("contact:pending:a"), WithTTL(time.Minute))
	b := New(st)

	if _, err := a.Save(payload()); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Load(); ok {
		t.Fatal("keys must not collide")
	}
	if a.TTL() != time.Minute || b.TTL() != TTL {
		t.Fatalf("ttl = %v %v", a.TTL(), b.TTL())
	}
	if err := a.Discard(); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Load(); ok {
		t.Fatal("discarded envelope returned")
	}
	if err := a.Discard(); err != nil {
		t.Fatalf("second discard: %v", err)
	}
}

func TestDir_FilesAndPermissions(t *testing.T) {
	t.Parallel()
	d, err := NewDir(filepath.Join(t.TempDir(), "s"))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Save("contact:pending", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(d.Path(), "contact_pending.json")); err != nil {
		t.Fatalf("expected sanitized file name: %v", err)
	}
	info, err := os.Stat(d.Path())
	if err != nil || info.Mode().Perm() != 0o700 {
		t.Fatalf("dir mode = %v %v", info.Mode().Perm(), err)
	}
	entries, _ := os.ReadDir(d.Path())
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}
