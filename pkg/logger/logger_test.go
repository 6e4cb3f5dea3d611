package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNoOpBeforeInit(t *testing.T) {
	Close()
	// must not panic
	Info("ignored %d", 1)
	Debug("ignored")
	if GetWriter() == nil {
		t.Error("GetWriter should never return nil")
	}
}

func TestSetOutputLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	Info("hello %s", "world")
	Warn("careful")
	Error("broken: %v", "x")
	Debug("details")

	out := buf.String()
	for _, want := range []string{"[INFO] hello world", "[WARN] careful", "[ERROR] broken: x", "[DEBUG] details"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	SetDebug(false)
	defer SetDebug(true)
	Debug("hidden")
	Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug output should be suppressed")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("info output should still be written")
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolver.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Info("analysis started")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[INFO] analysis started") {
		t.Errorf("log file content = %q", data)
	}
}

func TestInitInvalidPath(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Error("expected error for unwritable path")
	}
}
