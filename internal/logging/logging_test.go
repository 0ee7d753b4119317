package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("not a JSON line: %q", line)
		}
		out = append(out, rec)
	}
	return out
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := New(path, false)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("saved weights", zap.Int("count", 3))
	logger.Debug("hidden")
	logger.Sync()

	recs := readLines(t, path)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1 (debug suppressed)", len(recs))
	}
	if recs[0]["msg"] != "saved weights" || recs[0]["count"] != float64(3) {
		t.Fatalf("record = %v", recs[0])
	}
	if recs[0]["logger"] != "macrotrend" {
		t.Fatalf("logger name = %v", recs[0]["logger"])
	}
}

func TestNewDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := New(path, true)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("chart recomputed")
	logger.Sync()

	if recs := readLines(t, path); len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "macrotrend.log" {
		t.Fatalf("path = %q", path)
	}
}
