package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	kit "contactgate/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	contact := New().Prefix("CONTACT_")
	if got := contact.Key("PORT"); got != "CONTACT_PORT" {
		t.Fatalf("Key() = %q, want %q", got, "CONTACT_PORT")
	}
	nested := contact.Prefix("SMTP_")
	if got := nested.Key("ADDR"); got != "CONTACT_SMTP_ADDR" {
		t.Fatalf("nested Key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  contactgate ")
	if got := c.MustString("NAME"); got != "contactgate" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestLookupAndMissing(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_SET", "x")
	t.Setenv("M_BLANK", "   ")

	if v, ok := c.Lookup("SET"); !ok || v != "x" {
		t.Fatalf("Lookup(SET) = %q,%v", v, ok)
	}
	if _, ok := c.Lookup("BLANK"); ok {
		t.Fatalf("whitespace should count as missing")
	}
	got := c.Missing("SET", "BLANK", "NOPE")
	want := []string{"M_BLANK", "M_NOPE"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing = %v, want %v", got, want)
	}
	if c.Missing("SET") != nil {
		t.Fatalf("expected nil when nothing is missing")
	}
}

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("S_V", " val ")
	if got := c.MayString("V", "def"); got != "val" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 5); got != 5 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("I_OK", "12")
	if got := c.MayInt("OK", 5); got != 12 {
		t.Fatalf("MayInt = %d", got)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 5); got != 5 {
		t.Fatalf("MayInt invalid = %d", got)
	}
}

func TestMayFloat64(t *testing.T) {
	c := New().Prefix("F_")
	t.Setenv("F_OK", "0.5")
	if got := c.MayFloat64("OK", 0); got != 0.5 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	t.Setenv("F_BAD", "half")
	if got := c.MayFloat64("BAD", 0.3); got != 0.3 {
		t.Fatalf("MayFloat64 invalid = %v", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	t.Setenv("B_ON", "true")
	t.Setenv("B_BAD", "maybe")
	if !c.MayBool("ON", false) {
		t.Fatalf("MayBool true expected")
	}
	if !c.MayBool("BAD", true) {
		t.Fatalf("MayBool invalid should fall back to default")
	}
	if c.MayBool("MISSING", false) {
		t.Fatalf("MayBool missing should be default")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	t.Setenv("D_OK", "10s")
	t.Setenv("D_BAD", "ten")
	if got := c.MayDuration("OK", time.Second); got != 10*time.Second {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("BAD", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("L_")
	t.Setenv("L_V", " https://a.example , ,https://b.example ")
	got := c.MayCSV("V", nil)
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MayCSV = %v", got)
	}
	t.Setenv("L_EMPTY", " , ")
	if got := c.MayCSV("EMPTY", []string{"d"}); !reflect.DeepEqual(got, []string{"d"}) {
		t.Fatalf("MayCSV all-empty = %v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISSING", "smtp", "smtp", "resend"); got != "smtp" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_OK", "RESEND")
	if got := c.MayEnum("OK", "smtp", "smtp", "resend"); got != "resend" {
		t.Fatalf("MayEnum = %q", got)
	}
	t.Setenv("E_BAD", "carrier-pigeon")
	if got := c.MayEnum("BAD", "smtp", "smtp", "resend"); got != "" {
		t.Fatalf("MayEnum invalid = %q, want empty", got)
	}
	if got := c.MayEnum("MISSING", ""); got != "" {
		t.Fatalf("MayEnum empty default = %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("DOTENV_SAMPLE_A=from-file\nDOTENV_SAMPLE_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOTENV_SAMPLE_B", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("DOTENV_SAMPLE_A") })

	if err := LoadDotEnv("", filepath.Join(dir, "missing.env"), p); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("DOTENV_SAMPLE_A"); got != "from-file" {
		t.Fatalf("A = %q", got)
	}
	if got := os.Getenv("DOTENV_SAMPLE_B"); got != "from-env" {
		t.Fatalf("existing env must win, got %q", got)
	}
}
