package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsole(&buf)
	l.color = false

	l.Info("scanning %s", "/work")
	l.Warning("batch failed")
	l.Success("committed %d paths", 80)
	l.Process("svn commit [/wc] (80 paths)", 0, 1234, "Transmitting...", "")

	out := buf.String()
	for _, want := range []string{
		"· scanning /work",
		"! batch failed",
		"✓ committed 80 paths",
		"» svn commit [/wc] (80 paths) → exit 0 (1234ms)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProcessFailureUsesWarningStyle(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsole(&buf)
	l.color = false

	l.Process("svn commit", 1, 10, "", "E155011")
	if !strings.Contains(buf.String(), "! svn commit → exit 1") {
		t.Errorf("failed invocation not flagged:\n%s", buf.String())
	}
}

func TestFileLoggerWritesAndRotateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "svnwatch.log")
	l, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	l.Info("hello %s", "file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("log file missing the message:\n%s", data)
	}

	// Close is idempotent.
	if err := l.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestTrimStream(t *testing.T) {
	long := strings.Repeat("x", maxStream+100)
	if got := trimStream(long); len(got) <= maxStream || !strings.HasSuffix(got, "…") {
		t.Errorf("long stream not trimmed with a marker, len %d", len(got))
	}
	if got := trimStream("  short  \n"); got != "short" {
		t.Errorf("trim = %q", got)
	}
}

func TestNopSatisfiesLogger(t *testing.T) {
	var _ Logger = Nop{}
	var _ Logger = &FileLogger{}

	n := Nop{}
	n.Info("x")
	n.Warning("x")
	n.Success("x")
	n.Process("x", 0, 0, "", "")
	if err := n.Close(); err != nil {
		t.Error(err)
	}
}
