// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Logger construction tests

package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/logging"
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
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		out = append(out, m)
	}
	return out
}

func TestNew_LevelsAndFile(t *testing.T) {
	tests := []struct {
		verbose bool
		want    []string
	}{
		{verbose: false, want: []string{"warn"}},
		{verbose: true, want: []string{"debug", "warn"}},
	}

	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "fourteen.log")
		logger, err := logging.New(logging.Options{Verbose: tt.verbose, File: path})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		logger.Debug("staged", zap.String("key", "run_0"))
		logger.Warn("staging failed", zap.String("path", "a.txt"))
		_ = logger.Sync()

		lines := readLines(t, path)
		if len(lines) != len(tt.want) {
			t.Fatalf("verbose=%v: got %d lines, want %d", tt.verbose, len(lines), len(tt.want))
		}
		for i, level := range tt.want {
			if lines[i]["level"] != level {
				t.Errorf("line %d level = %v, want %s", i, lines[i]["level"], level)
			}
			if lines[i]["logger"] != "fourteen" {
				t.Errorf("line %d logger = %v", i, lines[i]["logger"])
			}
		}
	}
}
