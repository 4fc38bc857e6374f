// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Holding area workspace logic

package staging

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

var (
	// mutex ensures thread-safe run ID generation
	idMutex sync.Mutex
	// lastTimestamp prevents duplicate IDs in the same minute
	lastTimestamp string
	lastCounter   int
)

// ResetRunIDState resets the global run ID generation state (for testing)
func ResetRunIDState() {
	idMutex.Lock()
	defer idMutex.Unlock()
	lastTimestamp = ""
	lastCounter = 0
}

// GenerateRunID creates a unique run ID with format: fs-YYYYMMDD-HHMM-3hexchars
// or fs-YYYYMMDD-HHMM-NNN for successive calls within the same minute
func GenerateRunID() (string, error) {
	idMutex.Lock()
	defer idMutex.Unlock()

	timestamp := time.Now().Format("20060102-1504")

	if timestamp == lastTimestamp {
		lastCounter++
		return fmt.Sprintf("%s-%s-%03d", RunIDPrefix, timestamp, lastCounter), nil
	}

	randomBytes := make([]byte, 2)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	randomHex := hex.EncodeToString(randomBytes)[:3]

	lastTimestamp = timestamp
	lastCounter = 0

	return fmt.Sprintf("%s-%s-%s", RunIDPrefix, timestamp, randomHex), nil
}

// Workspace is the per-session holding area for staged file content.
// Each base directory gets its own <base>/.fourteen-stage/<run-id> dir.
type Workspace struct {
	RunID   string
	Path    string // holding dir under BaseDir
	BaseDir string
	fs      afero.Fs

	mu   sync.Mutex
	used map[string]string // holding dir -> base dir
}

// WorkspaceConfig holds configuration for workspace creation
type WorkspaceConfig struct {
	BaseDir string
	Fs      afero.Fs
}

// NewWorkspace allocates a run ID under BaseDir/.fourteen-stage.
// The directory itself is created on first use.
// If config is nil, uses current working directory as base
func NewWorkspace(config *WorkspaceConfig) (*Workspace, error) {
	if config == nil {
		config = &WorkspaceConfig{}
	}
	baseDir := config.BaseDir
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		baseDir = cwd
	}
	fs := config.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	runID, err := GenerateRunID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run ID: %w", err)
	}

	return &Workspace{
		RunID:   runID,
		Path:    filepath.Join(baseDir, HoldingDirName, runID),
		BaseDir: baseDir,
		fs:      fs,
		used:    make(map[string]string),
	}, nil
}

// Fs returns the filesystem the workspace writes to
func (w *Workspace) Fs() afero.Fs {
	return w.fs
}

// Dir returns the holding directory for base. An empty base means BaseDir.
func (w *Workspace) Dir(base string) string {
	if base == "" {
		return w.Path
	}
	return filepath.Join(base, HoldingDirName, w.RunID)
}

// HoldingPath returns the path of a holding file under base
func (w *Workspace) HoldingPath(base, name string) string {
	return filepath.Join(w.Dir(base), name)
}

// Hold writes content to a holding file under base and returns its handle
func (w *Workspace) Hold(base, name, content string) (*StagedContent, error) {
	if base == "" {
		base = w.BaseDir
	}
	dir := w.Dir(base)
	if err := w.fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create holding directory %s: %w", dir, err)
	}
	w.mu.Lock()
	w.used[dir] = base
	w.mu.Unlock()

	path := filepath.Join(dir, name)
	if err := afero.WriteFile(w.fs, path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write holding file %s: %w", path, err)
	}
	return &StagedContent{fs: w.fs, path: path, content: content}, nil
}

// String returns a string representation of the workspace
func (w *Workspace) String() string {
	return fmt.Sprintf("Workspace{RunID: %s, Path: %s}", w.RunID, w.Path)
}
