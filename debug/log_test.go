package debug

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogDisabledWritesNothing(t *testing.T) {
	Disable()
	Log("test", "hello %d", 1)
	if Enabled() {
		t.Fatal("expected logging disabled")
	}
}

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("sound", "loaded %s", "kick")
	Warn("sound", "missing %s", "fx9")

	got := buf.String()
	if !strings.Contains(got, "sound") || !strings.Contains(got, "loaded kick") {
		t.Fatalf("log line missing: %q", got)
	}
	if !strings.Contains(got, "WARN missing fx9") {
		t.Fatalf("warn line missing: %q", got)
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "tick", "cursor=%d", i)
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("lines = %d, want 2", n)
	}
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	defer Disable()
	if !Enabled() {
		t.Fatal("expected logging enabled")
	}
}
