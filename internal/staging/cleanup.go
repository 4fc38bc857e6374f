// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Cleanup functionality

package staging

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Cleanup removes every holding directory the workspace used when nothing
// is left in it, then the parent .fourteen-stage directory if that is empty too.
// Retained holding files keep their directory alive.
func (w *Workspace) Cleanup() error {
	w.mu.Lock()
	dirs := map[string]string{w.Path: w.BaseDir}
	for dir, base := range w.used {
		dirs[dir] = base
	}
	w.mu.Unlock()

	var errs []error
	for dir, base := range dirs {
		if err := w.cleanupDir(dir, base); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Workspace) cleanupDir(dir, base string) error {
	exists, err := afero.DirExists(w.fs, dir)
	if err != nil || !exists {
		return nil
	}

	empty, err := afero.IsEmpty(w.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to inspect workspace %s: %w", dir, err)
	}
	if !empty {
		return nil
	}

	if err := w.fs.Remove(dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace %s: %w", dir, err)
	}

	removeIfEmpty(w.fs, filepath.Join(base, HoldingDirName))
	return nil
}

// CleanupAll removes every holding directory under baseDir
func CleanupAll(fs afero.Fs, baseDir string) error {
	holdingDir := filepath.Join(baseDir, HoldingDirName)

	exists, err := afero.Exists(fs, holdingDir)
	if err != nil {
		return fmt.Errorf("failed to stat holding directory %s: %w", holdingDir, err)
	}
	if !exists {
		return nil
	}
	if isDir, _ := afero.IsDir(fs, holdingDir); !isDir {
		return fmt.Errorf("%s is not a directory", holdingDir)
	}

	if err := fs.RemoveAll(holdingDir); err != nil {
		return fmt.Errorf("failed to cleanup all workspaces: %w", err)
	}

	return nil
}

// CleanupStale removes workspaces older than the given number of hours
func CleanupStale(fs afero.Fs, baseDir string, maxAgeHours int) (int, error) {
	holdingDir := filepath.Join(baseDir, HoldingDirName)

	isDir, err := afero.DirExists(fs, holdingDir)
	if err != nil {
		return 0, fmt.Errorf("failed to stat holding directory %s: %w", holdingDir, err)
	}
	if !isDir {
		return 0, nil
	}

	entries, err := afero.ReadDir(fs, holdingDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read holding directory: %w", err)
	}

	now := time.Now()
	cleaned := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		ageInHours := int(now.Sub(entry.ModTime()).Hours())
		if ageInHours >= maxAgeHours {
			if err := fs.RemoveAll(filepath.Join(holdingDir, entry.Name())); err == nil {
				cleaned++
			}
		}
	}

	removeIfEmpty(fs, holdingDir)

	return cleaned, nil
}

func removeIfEmpty(fs afero.Fs, dir string) {
	if empty, err := afero.IsEmpty(fs, dir); err == nil && empty {
		_ = fs.Remove(dir)
	}
}
