// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// staging types/constants

package staging

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"

	"github.com/sony-level/fourteen/internal/directive"
)

const (
	HoldingDirName = ".fourteen-stage"
	RunIDPrefix    = "fs"
	HoldingPrefix  = "tempfile"
	RunKeyPrefix   = "run_"
)

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrReleased         = errors.New("staged content already released")
)

// Kind distinguishes command asks from file asks
type Kind int

const (
	KindRun Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindRun {
		return "run"
	}
	return "file"
}

// StagedContent is proposed file text written to the holding area
type StagedContent struct {
	mu       sync.Mutex
	fs       afero.Fs
	path     string
	content  string
	released bool
}

// Path returns the holding file path
func (s *StagedContent) Path() string {
	return s.path
}

// Content returns the proposed text as staged
func (s *StagedContent) Content() string {
	return s.content
}

// Load reads the holding file back from disk
func (s *StagedContent) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return "", ErrReleased
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read holding file %s: %w", s.path, err)
	}
	return string(data), nil
}

// Release removes the holding file. Calling it more than once is a no-op.
func (s *StagedContent) Release() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to release holding file %s: %w", s.path, err)
	}
	return nil
}

// Released reports whether Release has been called
func (s *StagedContent) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// PendingAsk is a staged operation awaiting a human decision
type PendingAsk struct {
	Key    string
	Kind   Kind
	Op     directive.Operation
	Staged *StagedContent
}

// Failure records an operation that could not be staged
type Failure struct {
	Path string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("failed to stage %s: %v", f.Path, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Batch is the result of staging one response
type Batch struct {
	Asks     []*PendingAsk
	Reads    []directive.Read
	Failures []*Failure
}

// Len returns the number of pending asks
func (b *Batch) Len() int {
	return len(b.Asks)
}

// Empty reports whether the batch needs no decision
func (b *Batch) Empty() bool {
	return len(b.Asks) == 0
}

// ReleaseAll releases every live staged content in the batch
func (b *Batch) ReleaseAll() error {
	var errs []error
	for _, ask := range b.Asks {
		if err := ask.Staged.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// indexOf finds an ask by key. Run and file keys are separate key spaces.
func (b *Batch) indexOf(kind Kind, key string) int {
	for i, ask := range b.Asks {
		if ask.Kind == kind && ask.Key == key {
			return i
		}
	}
	return -1
}

// liveHolding reports whether a live ask owns the holding path
func (b *Batch) liveHolding(path string) bool {
	for _, ask := range b.Asks {
		if ask.Staged != nil && ask.Staged.Path() == path && !ask.Staged.Released() {
			return true
		}
	}
	return false
}
