package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestZeroLoggerIsNoop(t *testing.T) {
	var l Logger
	if !l.IsZero() {
		t.Fatalf("zero Logger IsZero() = false")
	}
	// must not panic
	l.Info("hello", String("k", "v"))
	if l.With(String("a", "b")).IsZero() {
		t.Fatalf("With() on zero logger should carry fields")
	}
}

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, "debug").With(String("comp", "test"))
	l.Debug("added", Int("count", 2), Err(errors.New("boom")), Err(nil))

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}
	if line["message"] != "added" {
		t.Fatalf("message = %v", line["message"])
	}
	if line["comp"] != "test" {
		t.Fatalf("comp = %v", line["comp"])
	}
	if line["count"] != float64(2) {
		t.Fatalf("count = %v", line["count"])
	}
	if line["err"] != "boom" {
		t.Fatalf("err = %v", line["err"])
	}
	caller, _ := line["caller"].(string)
	if !strings.HasPrefix(caller, "logx_test.go:") {
		t.Fatalf("caller = %q", caller)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, "warn")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info below warn was written: %q", buf.String())
	}
	if l.Enabled(LevelInfo) {
		t.Fatalf("Enabled(info) = true at warn level")
	}
	if !l.Enabled(LevelError) {
		t.Fatalf("Enabled(error) = false at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in, zerolog.InfoLevel); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestServiceApplySwapsSinks(t *testing.T) {
	var console bytes.Buffer
	svc, log := newService(Config{Level: "info", Console: true}, &console)
	t.Cleanup(func() { _ = svc.Close() })

	log.Info("to console")
	if !strings.Contains(console.String(), "to console") {
		t.Fatalf("console output = %q", console.String())
	}

	path := filepath.Join(t.TempDir(), "notify.log")
	svc.Apply(Config{Level: "debug", File: FileConfig{Enabled: true, Path: path}})
	console.Reset()

	log.Debug("to file", String("k", "v"))
	if console.Len() != 0 {
		t.Fatalf("console should be disabled, got %q", console.String())
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), `"message":"to file"`) {
		t.Fatalf("file contents = %q", string(b))
	}
	if got := svc.Config().Level; got != "debug" {
		t.Fatalf("Config().Level = %q", got)
	}
}
