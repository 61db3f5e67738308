package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")

	logger, err := New("debug", path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	logger.Debug("hola archivo")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hola archivo") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("ruidoso", ""); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}
