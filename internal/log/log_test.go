package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "player.log")

	if err := Setup("debug", path); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	Debugf("loaded %s", "track_0.mp3")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Log file not created: %v", err)
	}
	if !strings.Contains(string(data), "loaded track_0.mp3") {
		t.Errorf("Expected log line in file, got %q", data)
	}
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.log")

	if err := Setup("loud", path); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	Debugf("hidden")
	Infof("shown")

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("Debug line should be filtered at info level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("Info line should be written")
	}
}

func TestSetup_NoFileDiscards(t *testing.T) {
	if err := Setup("info", ""); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	Infof("goes nowhere")
}
