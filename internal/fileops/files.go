// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// File primitives over an afero filesystem

package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	fileMode = 0644
	dirMode  = 0755
)

// Files wraps the filesystem operations used by staging and commit
type Files struct {
	fs afero.Fs
}

// New creates Files over fs. A nil fs means the OS filesystem.
func New(fs afero.Fs) *Files {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Files{fs: fs}
}

// Fs returns the underlying filesystem
func (f *Files) Fs() afero.Fs {
	return f.fs
}

// Read returns the content of path, creating an empty file when it is missing
func (f *Files) Read(path string) (string, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	file, err := f.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return "", nil
}

// Write replaces the content of path, creating parent directories
func (f *Files) Write(path, content string) error {
	if err := f.fs.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", path, err)
	}
	if err := afero.WriteFile(f.fs, path, []byte(content), fileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Append adds content to the end of path, creating it if needed
func (f *Files) Append(path, content string) error {
	file, err := f.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}

// Delete removes a file or empty directory
func (f *Files) Delete(path string) error {
	if err := f.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// Rename moves oldPath to newPath
func (f *Files) Rename(oldPath, newPath string) error {
	if err := f.fs.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

// MkdirAll creates path and any missing parents
func (f *Files) MkdirAll(path string) error {
	if err := f.fs.MkdirAll(path, dirMode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path exists
func (f *Files) Exists(path string) bool {
	ok, err := afero.Exists(f.fs, path)
	return err == nil && ok
}

// IsDir reports whether path exists and is a directory
func (f *Files) IsDir(path string) bool {
	ok, err := afero.IsDir(f.fs, path)
	return err == nil && ok
}

// ListFiles returns the regular files directly inside dir, sorted by name
func (f *Files) ListFiles(dir string) ([]string, error) {
	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
