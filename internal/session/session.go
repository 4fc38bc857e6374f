// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Interactive session: question loop, completion turn and approval

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/approval"
	"github.com/sony-level/fourteen/internal/commit"
	"github.com/sony-level/fourteen/internal/directive"
	"github.com/sony-level/fourteen/internal/exec"
	"github.com/sony-level/fourteen/internal/fileops"
	"github.com/sony-level/fourteen/internal/history"
	"github.com/sony-level/fourteen/internal/llm"
	"github.com/sony-level/fourteen/internal/projectctx"
	"github.com/sony-level/fourteen/internal/staging"
	"github.com/sony-level/fourteen/internal/ui"
	"github.com/sony-level/fourteen/internal/vcwd"
)

var (
	// ErrExit ends the loop normally
	ErrExit = errors.New("exit requested")
	// ErrFatal wraps an unexpected fault that ended the loop
	ErrFatal = errors.New("fatal error")
)

// RuleCommand makes every input a command
const RuleCommand = "command"

// Asker is the completion client
type Asker interface {
	Ask(ctx context.Context, hist *history.History, question string) (string, error)
	Reask(ctx context.Context, hist *history.History, index int) (string, error)
}

// Console reads questions and approval answers
type Console interface {
	approval.Prompter
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// Config wires a session
type Config struct {
	Asker     Asker
	History   *history.History
	Cwd       *vcwd.Dir
	Files     *fileops.Files
	Runner    exec.Executor
	Workspace *staging.Workspace
	Console   Console
	Renderer  *ui.Renderer
	Logger    *zap.Logger

	// TreeDepth bounds the project context tree
	TreeDepth int
	// CommandMode starts with the command rule on
	CommandMode bool
	// Context overrides the project context summary
	Context func(root string) string
}

// Session is one interactive conversation
type Session struct {
	asker     Asker
	hist      *history.History
	cwd       *vcwd.Dir
	files     *fileops.Files
	runner    exec.Executor
	ws        *staging.Workspace
	stager    *staging.Stager
	committer *commit.Committer
	console   Console
	r         *ui.Renderer
	logger    *zap.Logger
	context   func(root string) string
	rules     map[string]bool
}

// New creates a session
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := cfg.Renderer
	if r == nil {
		r = ui.NewRenderer(io.Discard)
	}

	s := &Session{
		asker:     cfg.Asker,
		hist:      cfg.History,
		cwd:       cfg.Cwd,
		files:     cfg.Files,
		runner:    cfg.Runner,
		ws:        cfg.Workspace,
		committer: commit.New(cfg.Files, cfg.Cwd, cfg.Runner, logger),
		r:         r,
		logger:    logger,
		context:   cfg.Context,
		rules:     map[string]bool{RuleCommand: cfg.CommandMode},
	}
	s.console = cfg.Console

	var cwd staging.WorkingDir
	if cfg.Cwd != nil {
		cwd = cfg.Cwd
	}
	s.stager = staging.NewStager(cfg.Workspace, cwd, logger)

	if s.context == nil {
		depth := cfg.TreeDepth
		fs := cfg.Files.Fs()
		s.context = func(root string) string {
			return projectctx.Snapshot(projectctx.Config{Root: root, MaxDepth: depth, Fs: fs}).Render()
		}
	}
	return s
}

// Rule reports the value of a session rule
func (s *Session) Rule(name string) bool {
	return s.rules[name]
}

// Run reads and handles input until /exit, end of input or a fatal fault
func (s *Session) Run(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = s.fatal(fmt.Errorf("panic: %v", rec))
		}
	}()

	s.r.Banner()
	for {
		line, err := s.console.ReadLine(ctx, s.r.Prompt(s.cwd.Path()))
		if err != nil {
			if isEndOfInput(err) {
				return nil
			}
			return s.fatal(err)
		}

		err = s.Turn(ctx, line)
		switch {
		case err == nil:
		case errors.Is(err, ErrExit):
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ui.ErrInterrupted):
			s.r.Warn("Interrupted, remaining operations canceled.")
		default:
			return s.fatal(err)
		}
	}
}

// Close removes the holding directory if nothing was retained in it
func (s *Session) Close() error {
	if s.ws == nil {
		return nil
	}
	return s.ws.Cleanup()
}

func (s *Session) fatal(err error) error {
	s.logger.Error("fatal error captured", zap.Error(err))
	s.r.Fatal(err)
	return fmt.Errorf("%w: %w", ErrFatal, err)
}

func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, ui.ErrInterrupted) || errors.Is(err, context.Canceled)
}

// Turn handles one line of input
func (s *Session) Turn(ctx context.Context, input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	if strings.HasPrefix(input, "/") || s.rules[RuleCommand] {
		return s.command(ctx, strings.TrimPrefix(strings.TrimSpace(input), "/"))
	}
	return s.Ask(ctx, input)
}

// Ask sends a question with the project context and reviews the reply
func (s *Session) Ask(ctx context.Context, question string) error {
	q := llm.BuildQuestion(s.context(s.cwd.Path()), question)
	reply, err := s.asker.Ask(ctx, s.hist, q)
	return s.review(ctx, reply, err)
}

func (s *Session) review(ctx context.Context, reply string, err error) error {
	if err != nil {
		var se *llm.ServiceError
		if errors.As(err, &se) {
			s.r.Failure("%s", se.Error())
			return nil
		}
		return err
	}

	items := directive.Parse(reply)
	s.r.Prose(directive.Prose(items))

	batch, err := s.stager.Stage(directive.Operations(items))
	if err != nil {
		return err
	}
	for _, rd := range batch.Reads {
		s.addFile(rd.Path, false)
	}

	prompter := ui.NewPrompter(s.r, s.console, s.original)
	wf := approval.NewWorkflow(prompter, s.committer, s.hist, s.logger)
	wf.OnEntry(s.showEntry)
	report, err := wf.Run(ctx, batch)
	if report != nil && report.Decision == approval.CancelAll && err == nil {
		s.r.Failure("All operations canceled.")
	}
	if err != nil {
		return err
	}

	s.logger.Debug("turn done",
		zap.Int("committed", report.Count(approval.Committed)),
		zap.Int("rejected", report.Count(approval.Rejected)),
		zap.Int("skipped", report.Count(approval.Skipped)),
		zap.Int("failed", len(report.Failed())))
	return nil
}

func (s *Session) showEntry(ask *staging.PendingAsk, e approval.Entry) {
	switch e.Disposition {
	case approval.Committed:
		s.r.Outcome(*e.Outcome)
	case approval.Skipped:
		s.r.Warn("Operation %s skipped but the file remains.", e.Key)
	default:
		s.r.Failure("Operation %s canceled.", e.Key)
	}
}

// addFile puts a file into the conversation as a FILE message. Unless
// mustExist is set, a missing file is created empty.
func (s *Session) addFile(path string, mustExist bool) bool {
	target := s.committer.Resolve(path)
	if s.files.IsDir(target) || (mustExist && !s.files.Exists(target)) {
		s.r.Failure("File not found: %s", path)
		return false
	}
	content, err := s.files.Read(target)
	if err != nil {
		s.r.Failure("%v", err)
		return false
	}
	s.hist.AddFile(path, content)
	s.r.Success("FILE %s added.", path)
	return true
}

// original returns the current content of an edit target for previews
func (s *Session) original(path string) (string, bool) {
	target := s.committer.Resolve(path)
	if !s.files.Exists(target) {
		return "", false
	}
	content, err := s.files.Read(target)
	if err != nil {
		return "", false
	}
	return content, true
}
