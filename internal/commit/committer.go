// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Applies accepted asks to the filesystem and process runner

package commit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/directive"
	"github.com/sony-level/fourteen/internal/exec"
	"github.com/sony-level/fourteen/internal/fileops"
	"github.com/sony-level/fourteen/internal/staging"
	"github.com/sony-level/fourteen/internal/vcwd"
)

// Run options honored by the committer
const (
	OptionShell   = "shell"
	OptionTimeout = "timeout"
	OptionCwd     = "cwd"
)

var ErrUnknownOperation = errors.New("unknown operation")

// Outcome is the result of committing one ask
type Outcome struct {
	Key     string
	Success bool
	Output  string
	Err     error
}

// Committer applies asks in the order it is given them
type Committer struct {
	files  *fileops.Files
	cwd    *vcwd.Dir
	runner exec.Executor
	logger *zap.Logger
}

// New creates a committer
func New(files *fileops.Files, cwd *vcwd.Dir, runner exec.Executor, logger *zap.Logger) *Committer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Committer{files: files, cwd: cwd, runner: runner, logger: logger}
}

// Commit applies a single ask. Staged content is released whatever the result.
func (c *Committer) Commit(ctx context.Context, ask *staging.PendingAsk) Outcome {
	defer func() {
		if err := ask.Staged.Release(); err != nil {
			c.logger.Warn("failed to release staged content",
				zap.String("key", ask.Key),
				zap.Error(err))
		}
	}()

	out := Outcome{Key: ask.Key}
	var msg string
	var err error

	switch op := ask.Op.(type) {
	case directive.Run:
		return c.commitRun(ctx, ask.Key, op)
	case directive.Create:
		msg, err = c.write(ask, op.Path, op.Content, "Created")
	case directive.Edit:
		msg, err = c.write(ask, op.Path, op.Content, "Edited")
	case directive.Delete:
		target := c.Resolve(op.Path)
		err = c.files.Delete(target)
		msg = "Deleted " + target
	case directive.NewDir:
		target := c.Resolve(op.Path)
		err = c.files.MkdirAll(target)
		msg = "Created directory " + target
	case directive.Rename:
		src := c.Resolve(op.Path)
		dst := op.NewName
		if !filepath.IsAbs(dst) {
			dst = filepath.Join(filepath.Dir(src), dst)
		}
		err = c.files.Rename(src, dst)
		msg = fmt.Sprintf("Renamed %s to %s", src, dst)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownOperation, ask.Op)
	}

	if err != nil {
		out.Err = err
		out.Output = err.Error()
		c.logger.Debug("commit failed", zap.String("key", ask.Key), zap.Error(err))
		return out
	}
	out.Success = true
	out.Output = msg
	return out
}

func (c *Committer) write(ask *staging.PendingAsk, path, fallback, verb string) (string, error) {
	content := fallback
	if ask.Staged != nil {
		loaded, err := ask.Staged.Load()
		if err != nil {
			return "", err
		}
		content = loaded
	}
	target := c.Resolve(path)
	if err := c.files.Write(target, content); err != nil {
		return "", err
	}
	return verb + " " + target, nil
}

func (c *Committer) commitRun(ctx context.Context, key string, run directive.Run) Outcome {
	line := strings.Join(run.Command, " ")

	if vcwd.IsCd(line) {
		if err := c.cwd.Navigate(line); err != nil {
			return Outcome{Key: key, Output: err.Error(), Err: err}
		}
		return Outcome{Key: key, Success: true, Output: c.cwd.Path()}
	}

	req := exec.Request{Argv: run.Command, Dir: c.cwd.Path()}
	if err := applyOptions(&req, run.Options); err != nil {
		return Outcome{Key: key, Output: err.Error(), Err: err}
	}

	result := c.runner.Run(ctx, req)
	out := Outcome{Key: key, Success: result.Success, Output: result.Output()}
	if !result.Success {
		out.Err = result.Error
		if out.Err == nil {
			out.Err = fmt.Errorf("command exited with code %d", result.ExitCode)
		}
	}
	return out
}

// applyOptions maps run options onto the request. Unknown options are ignored.
func applyOptions(req *exec.Request, options map[string]any) error {
	if v, ok := options[OptionShell]; ok {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("option %s: expected True or False, got %v", OptionShell, v)
		}
		req.Shell = exec.Bool(b)
	}

	if v, ok := options[OptionTimeout]; ok {
		secs, err := toSeconds(v)
		if err != nil {
			return fmt.Errorf("option %s: %w", OptionTimeout, err)
		}
		req.Timeout = time.Duration(secs * float64(time.Second))
	}

	if v, ok := options[OptionCwd]; ok {
		dir := fmt.Sprint(v)
		if filepath.IsAbs(dir) {
			req.Dir = dir
		} else {
			req.Dir = filepath.Join(req.Dir, dir)
		}
	}

	return nil
}

func toSeconds(v any) (float64, error) {
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid seconds %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("invalid seconds %v", v)
	}
}

// Resolve anchors a relative path at the virtual working directory
func (c *Committer) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.cwd.Path(), path)
}
