package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLogDirHonorsXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	got := DefaultLogDir()
	want := filepath.Join("/custom/state", "silhouette", "logs")
	if got != want {
		t.Errorf("DefaultLogDir() = %q, want %q", got, want)
	}
}

func TestSetupNoLogReturnsNil(t *testing.T) {
	l, err := Setup(t.TempDir(), false, true, []string{"silhouette", "video"})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if l != nil {
		t.Error("Setup(noLog=true) should return a nil Logger")
	}
}

func TestSetupCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	l, err := Setup(dir, false, false, []string{"silhouette", "video", "-i", "in.mp4"})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer l.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log file, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "silhouette_run_") {
		t.Errorf("log file name = %q, want silhouette_run_ prefix", entries[0].Name())
	}
}

func TestDebugOnlyWritesWhenVerbose(t *testing.T) {
	dir := t.TempDir()
	l, err := Setup(dir, false, false, []string{"silhouette"})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer l.Close()

	l.Debug("should not appear")

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "should not appear") {
		t.Error("Debug should be a no-op when verbose is false")
	}
}

func TestDebugWritesWhenVerbose(t *testing.T) {
	dir := t.TempDir()
	l, err := Setup(dir, true, false, []string{"silhouette"})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer l.Close()

	l.Debug("debug marker")

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "debug marker") {
		t.Error("Debug should write when verbose is true")
	}
}

func TestNilLoggerMethodsAreNoops(t *testing.T) {
	var l *Logger
	l.Info("x")
	l.Debug("y")
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil Logger returned error: %v", err)
	}
	if l.Writer() == nil {
		t.Error("Writer on nil Logger should return io.Discard, not nil")
	}
}
