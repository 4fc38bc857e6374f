// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Execution types and interfaces

package exec

import (
	"context"
	"errors"
	"io"
	"runtime"
	"time"
)

// DefaultCommandTimeout is the default timeout for a single command
const DefaultCommandTimeout = 5 * time.Minute

// MaxCommandTimeout is the maximum allowed timeout for a single command
const MaxCommandTimeout = 30 * time.Minute

// killGrace is how long an interrupted process group gets before SIGKILL
const killGrace = 2 * time.Second

var (
	ErrCommandNotFound = errors.New("command not found")
	ErrEmptyCommand    = errors.New("empty command")
)

// Executor runs a single command request
type Executor interface {
	Run(ctx context.Context, req Request) *CommandResult
}

// RunnerConfig configures the runner
type RunnerConfig struct {
	DefaultTimeout time.Duration // Used when a request has no timeout
	Stdout         io.Writer     // Optional live copy of stdout
	Stderr         io.Writer     // Optional live copy of stderr
	Env            []string      // Extra environment, appended to the process env
}

// Request describes one command to run.
// Exactly one of Line or Argv should be set.
type Request struct {
	Line    string
	Argv    []string
	Dir     string
	Shell   *bool         // nil means DefaultShell()
	Timeout time.Duration // 0 means the runner default
}

// CommandResult contains the raw result of running a command
type CommandResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Error    error
	Duration time.Duration
}

// Output returns stdout on success, otherwise stderr or the error text
func (r *CommandResult) Output() string {
	if r.Success {
		return r.Stdout
	}
	if r.Stderr != "" {
		return r.Stderr
	}
	if r.Error != nil {
		return r.Error.Error()
	}
	return ""
}

// DefaultShell reports whether commands go through the platform shell by default
func DefaultShell() bool {
	return runtime.GOOS == "windows"
}

// Bool returns a pointer to b, for Request.Shell
func Bool(b bool) *bool {
	return &b
}

// EffectiveTimeout clamps a requested timeout
func EffectiveTimeout(requested, defaultTimeout time.Duration) time.Duration {
	if requested > 0 {
		if requested > MaxCommandTimeout {
			return MaxCommandTimeout
		}
		return requested
	}
	if defaultTimeout > 0 {
		return defaultTimeout
	}
	return DefaultCommandTimeout
}
