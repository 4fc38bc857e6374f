// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Command runner with streaming output and process-group cancellation

package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"
)

// Runner executes commands
type Runner struct {
	config *RunnerConfig
	logger *zap.Logger
}

// NewRunner creates a new command runner
func NewRunner(config *RunnerConfig, logger *zap.Logger) *Runner {
	if config == nil {
		config = &RunnerConfig{DefaultTimeout: DefaultCommandTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{config: config, logger: logger}
}

// Run executes req and always returns a result
func (r *Runner) Run(ctx context.Context, req Request) *CommandResult {
	startTime := time.Now()
	result := r.run(ctx, req)
	result.Duration = time.Since(startTime)

	r.logger.Debug("command finished",
		zap.String("line", req.Line),
		zap.Strings("argv", req.Argv),
		zap.String("dir", req.Dir),
		zap.Int("exit_code", result.ExitCode),
		zap.Bool("success", result.Success),
		zap.Duration("duration", result.Duration))

	return result
}

func (r *Runner) run(ctx context.Context, req Request) *CommandResult {
	result := &CommandResult{}

	argv, err := buildArgv(req)
	if err != nil {
		result.ExitCode = 1
		result.Error = err
		return result
	}

	// Without a shell the program must be resolvable on PATH.
	if !useShell(req) {
		if _, err := exec.LookPath(argv[0]); err != nil {
			result.ExitCode = 1
			result.Stderr = fmt.Sprintf("Command not found: %s", argv[0])
			result.Error = fmt.Errorf("%w: %s", ErrCommandNotFound, argv[0])
			return result
		}
	}

	timeout := EffectiveTimeout(req.Timeout, r.config.DefaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = req.Dir
	if len(r.config.Env) > 0 {
		cmd.Env = append(os.Environ(), r.config.Env...)
	}
	setPlatformProcessGroup(cmd)

	exited := make(chan struct{})
	cmd.Cancel = func() error {
		if err := interruptProcessGroup(cmd); err != nil {
			return killProcessGroup(cmd)
		}
		time.AfterFunc(killGrace, func() {
			select {
			case <-exited:
			default:
				_ = killProcessGroup(cmd)
			}
		})
		return nil
	}
	cmd.WaitDelay = 2 * killGrace

	// Set up pipes for stdout/stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		result.Error = fmt.Errorf("failed to create stdout pipe: %w", err)
		return result
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		result.Error = fmt.Errorf("failed to create stderr pipe: %w", err)
		return result
	}

	if err := cmd.Start(); err != nil {
		result.ExitCode = 1
		result.Error = fmt.Errorf("failed to start command: %w", err)
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			result.Stderr = fmt.Sprintf("Command not found: %s", argv[0])
		}
		return result
	}

	// Read output concurrently
	var stdoutBuf, stderrBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		streamOutput(stdout, &stdoutBuf, r.config.Stdout)
	}()

	go func() {
		defer wg.Done()
		streamOutput(stderr, &stderrBuf, r.config.Stderr)
	}()

	wg.Wait()

	err = cmd.Wait()
	close(exited)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			result.ExitCode = -1
			result.Error = fmt.Errorf("command timed out after %v", timeout)
		case errors.Is(ctx.Err(), context.Canceled):
			result.ExitCode = -1
			result.Error = fmt.Errorf("command interrupted: %w", ctx.Err())
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
			result.Error = fmt.Errorf("command exited with code %d", result.ExitCode)
		default:
			result.Error = err
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

func useShell(req Request) bool {
	if req.Shell != nil {
		return *req.Shell
	}
	return DefaultShell()
}

// buildArgv resolves the request into a program and its arguments
func buildArgv(req Request) ([]string, error) {
	shell := useShell(req)

	if len(req.Argv) > 0 {
		if shell {
			return shellArgs(shellquote.Join(req.Argv...)), nil
		}
		return req.Argv, nil
	}

	line := strings.TrimSpace(req.Line)
	if line == "" {
		return nil, ErrEmptyCommand
	}
	if shell {
		return shellArgs(line), nil
	}

	argv, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("failed to split command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return argv, nil
}

// streamOutput copies a pipe byte for byte into buf and an optional live output
func streamOutput(pipe io.Reader, buf *strings.Builder, out io.Writer) {
	var w io.Writer = buf
	if out != nil {
		w = io.MultiWriter(buf, out)
	}
	_, _ = io.Copy(w, pipe)
}
