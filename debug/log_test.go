package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategoryWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	Log("engine", "trigger key=%d", 3)
	Disable()
	Log("engine", "after disable")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "cat=engine") || !strings.Contains(out, "trigger key=3") {
		t.Errorf("log missing entry:\n%s", out)
	}
	if strings.Contains(out, "after disable") {
		t.Errorf("logged after Disable:\n%s", out)
	}
}

func TestLogEveryOnlyLogsNth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	for i := 0; i < 7; i++ {
		LogEvery(3, "midi", "clock tick")
	}
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "clock tick"); n != 2 {
		t.Errorf("got %d clock entries, want 2:\n%s", n, data)
	}
}
