package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("agent", &buf)

	l.Infof("turn %d done", 3)
	l.Warnf("extraction skipped: %s", "bad json")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[agent] [INFO] turn 3 done") {
		t.Errorf("Unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "[agent] [WARN] extraction skipped: bad json") {
		t.Errorf("Unexpected second line: %s", lines[1])
	}
}

func TestSessionIDIsStable(t *testing.T) {
	a := NewNopLogger()
	b := NewWriterLogger("other", &bytes.Buffer{})

	if a.SessionID() == "" {
		t.Fatal("Session ID should not be empty")
	}
	if a.SessionID() != b.SessionID() || a.SessionID() != GetSessionID() {
		t.Error("All loggers in a process should share one session ID")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Infof("ignored")
	l.Errorf("ignored %v", 1)
}

func TestCloseIsIdempotent(t *testing.T) {
	l := NewNopLogger()
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
}
