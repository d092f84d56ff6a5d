package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWritesToRotatedFile(t *testing.T) {
	dir := t.TempDir()
	log, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info().Str("event", "startup").Msg("agent starting")

	data, err := os.ReadFile(filepath.Join(dir, "agent.log"))
	if err != nil {
		t.Fatalf("expected a log file to exist: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected the log file to be non-empty")
	}
}

func TestNopDiscardsEverything(t *testing.T) {
	log := Nop()
	log.Info().Msg("should not panic or write anywhere")
}
