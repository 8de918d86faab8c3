package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "contactgate/internal/platform/testkit"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestParseLevel_AllBranches(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"   nonsense   ", "info"},
	}
	for _, c := range cases {
		lvl := parseLevel(c.in)
		if strings.ToLower(lvl.String()) != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, lvl, c.want)
		}
	}
}

func TestInit_Get_Named_C_WithRequest(t *testing.T) {
	var buf bytes.Buffer

	Init(Options{
		Level:       "info",
		Format:      "console",
		Service:     "contactgate-test",
		Component:   "root",
		Writer:      &buf,
		WithCaller:  true,
		SampleEvery: 2,
		StaticFields: map[string]string{
			"build": "test",
		},
	})

	// re-sample to N=1 so every line emits
	rv := Get().Sample(&zerolog.BasicSampler{N: 1})
	rp := &rv
	rp.Info().Str("k", "v").Msg("root-msg")

	nv := Named("contact").Sample(&zerolog.BasicSampler{N: 1})
	np := &nv
	np.Info().Msg("named-msg")

	ctx := WithRequest(context.Background(), "req-123", "203.0.113.9")
	cv := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	cp := &cv
	cp.Info().Msg("ctx-msg")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "ctx-msg")
	kit.MustContain(t, out, "component=")
	kit.MustContain(t, out, "contact")
	kit.MustContain(t, out, "request_id=")
	kit.MustContain(t, out, "req-123")
	kit.MustContain(t, out, "client_ip=")
	kit.MustContain(t, out, "203.0.113.9")
	kit.MustContain(t, out, "build=")
	kit.MustContain(t, out, "service=")
}

func TestFromEnv_Independently(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_COMPONENT", "comp-b")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")
	t.Setenv("LOG_FILE", "/tmp/contactgate.log")
	t.Setenv("LOG_FILE_MAX_MB", "10")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "svc-b" || opt.Component != "comp-b" {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
	if opt.File.Path != "/tmp/contactgate.log" || opt.File.MaxSizeMB != 10 || opt.File.MaxBackups != 5 {
		t.Fatalf("FromEnv file mismatch: %+v", opt.File)
	}
}

func TestFileWriter(t *testing.T) {
	if fileWriter(FileOptions{Path: "  "}) != nil {
		t.Fatalf("blank path should disable the file sink")
	}
	w := fileWriter(FileOptions{Path: "/tmp/x.log", MaxSizeMB: 3, MaxBackups: 2, MaxAgeDays: 1})
	lj, ok := w.(*lumberjack.Logger)
	if !ok {
		t.Fatalf("want *lumberjack.Logger, got %T", w)
	}
	if lj.Filename != "/tmp/x.log" || lj.MaxSize != 3 || lj.MaxBackups != 2 || lj.MaxAge != 1 || !lj.Compress {
		t.Fatalf("unexpected rotation settings: %+v", lj)
	}
}

func TestWithRequest_NoValues(t *testing.T) {
	ctx := WithRequest(context.Background(), "", "")
	if ctx != context.Background() {
		t.Fatalf("empty values should not wrap ctx")
	}
	v := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	p := &v
	p.Debug().Msg("no-fields")
}
