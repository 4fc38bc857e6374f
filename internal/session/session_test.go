// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Session loop tests over an in-memory project

package session_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/sony-level/fourteen/internal/approval"
	"github.com/sony-level/fourteen/internal/exec"
	"github.com/sony-level/fourteen/internal/fileops"
	"github.com/sony-level/fourteen/internal/history"
	"github.com/sony-level/fourteen/internal/llm"
	"github.com/sony-level/fourteen/internal/llm/provider"
	"github.com/sony-level/fourteen/internal/session"
	"github.com/sony-level/fourteen/internal/staging"
	"github.com/sony-level/fourteen/internal/ui"
	"github.com/sony-level/fourteen/internal/vcwd"
)

type fakeRunner struct {
	requests []exec.Request
}

func (f *fakeRunner) Run(_ context.Context, req exec.Request) *exec.CommandResult {
	f.requests = append(f.requests, req)
	line := req.Line
	if line == "" {
		line = strings.Join(req.Argv, " ")
	}
	return &exec.CommandResult{Success: true, Stdout: "ran " + line + "\n"}
}

type failingProvider struct{ err error }

func (p *failingProvider) Name() string { return "failing" }

func (p *failingProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (string, error) {
	return "", p.err
}

type panickingProvider struct{}

func (panickingProvider) Name() string { return "panicking" }

func (panickingProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (string, error) {
	panic("provider exploded")
}

type env struct {
	fs     afero.Fs
	files  *fileops.Files
	hist   *history.History
	runner *fakeRunner
	ws     *staging.Workspace
	out    *bytes.Buffer
	sess   *session.Session
}

func newEnv(t *testing.T, prov llm.Provider, input string) *env {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/proj/sub", 0o755); err != nil {
		t.Fatal(err)
	}
	ws, err := staging.NewWorkspace(&staging.WorkspaceConfig{BaseDir: "/proj", Fs: fs})
	if err != nil {
		t.Fatal(err)
	}

	e := &env{
		fs:     fs,
		files:  fileops.New(fs),
		hist:   history.New(llm.SystemPrompt),
		runner: &fakeRunner{},
		ws:     ws,
		out:    &bytes.Buffer{},
	}
	e.sess = session.New(session.Config{
		Asker:     llm.NewClient(prov, nil, nil),
		History:   e.hist,
		Cwd:       vcwd.New("/proj", vcwd.WithFs(fs), vcwd.WithStyle(vcwd.StylePOSIX)),
		Files:     e.files,
		Runner:    e.runner,
		Workspace: ws,
		Console:   approval.NewLinePrompter(strings.NewReader(input), io.Discard),
		Renderer:  ui.NewRenderer(e.out),
		Context:   func(root string) string { return "CTX " + root },
	})
	return e
}

func (e *env) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

const createReply = "I will create the file.\n%%create hello.py\n[file_start python]\nprint(1)\n[file_end]\n%%run python hello.py"

func TestRun_AcceptAll(t *testing.T) {
	e := newEnv(t, provider.NewMockProvider(createReply), "write hello\na\n/exit\n")

	if err := e.sess.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := e.read(t, "/proj/hello.py"); got != "print(1)" {
		t.Errorf("hello.py = %q", got)
	}
	if len(e.runner.requests) != 1 || e.runner.requests[0].Dir != "/proj" {
		t.Errorf("runner requests = %+v", e.runner.requests)
	}

	msgs := e.hist.Messages()
	if len(msgs) != 3 {
		t.Fatalf("history has %d messages, want 3", len(msgs))
	}
	if msgs[1].Content != "CTX /proj\nwrite hello" {
		t.Errorf("question = %q", msgs[1].Content)
	}

	out := e.out.String()
	for _, want := range []string{"I will create the file.", "Created", "ran python hello.py", "Exiting..."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := e.sess.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if ok, _ := afero.DirExists(e.fs, e.ws.Path); ok {
		t.Error("holding directory left behind")
	}
}

func TestRun_CancelAll(t *testing.T) {
	e := newEnv(t, provider.NewMockProvider(createReply), "write hello\nc\n")

	if err := e.sess.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if ok, _ := afero.Exists(e.fs, "/proj/hello.py"); ok {
		t.Error("hello.py written after cancel")
	}
	if len(e.runner.requests) != 0 {
		t.Errorf("runner called %d times after cancel", len(e.runner.requests))
	}
	entries, _ := afero.ReadDir(e.fs, e.ws.Path)
	if len(entries) != 0 {
		t.Errorf("holding area still has %d files", len(entries))
	}

	msgs := e.hist.Messages()
	if last := msgs[len(msgs)-1]; last.Role != history.RoleSystem || last.Content != approval.NoteAllCanceled {
		t.Errorf("last message = %+v", last)
	}
	if !strings.Contains(e.out.String(), "All operations canceled.") {
		t.Errorf("output = %s", e.out.String())
	}
}

func TestRun_OneByOneSkipRetains(t *testing.T) {
	e := newEnv(t, provider.NewMockProvider(createReply), "write hello\no\ns\nn\n")

	if err := e.sess.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	entries, _ := afero.ReadDir(e.fs, e.ws.Path)
	if len(entries) != 1 {
		t.Fatalf("holding area has %d files, want the skipped one", len(entries))
	}
	if len(e.runner.requests) != 0 {
		t.Error("rejected run was executed")
	}

	out := e.out.String()
	for _, want := range []string{"skipped but the file remains", "Operation run_0 canceled."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if err := e.sess.Close(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.DirExists(e.fs, e.ws.Path); !ok {
		t.Error("Close() removed a holding directory that still has retained content")
	}
}

func TestRun_ReadDirective(t *testing.T) {
	e := newEnv(t, provider.NewMockProvider("Let me look.\n%%read notes.txt"), "check notes\n")
	if err := afero.WriteFile(e.fs, "/proj/notes.txt", []byte("todo"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := e.sess.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]string{"notes.txt"}, e.hist.Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
	msgs := e.hist.Messages()
	if got := msgs[len(msgs)-1].Content; got != "FILE notes.txt\ntodo" {
		t.Errorf("file message = %q", got)
	}
}

func TestRun_ServiceErrorEndsTurn(t *testing.T) {
	prov := &failingProvider{err: errors.New("HTTP 429: server overloaded")}
	e := newEnv(t, prov, "hello\n")

	if err := e.sess.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.hist.Len() != 1 {
		t.Errorf("history has %d messages after a failed completion", e.hist.Len())
	}
	if !strings.Contains(e.out.String(), "temporarily overloaded") {
		t.Errorf("output = %s", e.out.String())
	}
}

func TestRun_PanicIsFatal(t *testing.T) {
	e := newEnv(t, panickingProvider{}, "hello\n")

	err := e.sess.Run(context.Background())
	if !errors.Is(err, session.ErrFatal) {
		t.Fatalf("Run() error = %v, want ErrFatal", err)
	}
	if !strings.Contains(e.out.String(), "Fatal error captured: panic: provider exploded") {
		t.Errorf("output = %s", e.out.String())
	}
}

func TestCommands(t *testing.T) {
	e := newEnv(t, provider.NewMockProvider(), "")
	ctx := context.Background()
	if err := afero.WriteFile(e.fs, "/proj/a.txt", []byte("A"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(e.fs, "/proj/b.txt", []byte("B"), 0o644); err != nil {
		t.Fatal(err)
	}

	steps := []string{"/readfiles", "/readfile a.txt", "/readfile", "/readfile missing.txt", "/files"}
	for _, s := range steps {
		if err := e.sess.Turn(ctx, s); err != nil {
			t.Fatalf("Turn(%q) error = %v", s, err)
		}
	}
	if diff := cmp.Diff([]string{"a.txt", "b.txt", "a.txt"}, e.hist.Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
	if ok, _ := afero.Exists(e.fs, "/proj/missing.txt"); ok {
		t.Error("/readfile created a missing file")
	}

	if err := e.sess.Turn(ctx, "/clearfiles"); err != nil {
		t.Fatal(err)
	}
	if len(e.hist.Files()) != 0 {
		t.Errorf("Files() = %v after /clearfiles", e.hist.Files())
	}

	out := e.out.String()
	for _, want := range []string{"FILE a.txt added.", "Wrong syntax: readfile", "Usage: /readfile <file>", "File not found: missing.txt", "All files cleared."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommands_CdAndShell(t *testing.T) {
	e := newEnv(t, provider.NewMockProvider(), "")
	ctx := context.Background()

	for _, s := range []string{"/cd sub", "/ls -la", "/cd nowhere"} {
		if err := e.sess.Turn(ctx, s); err != nil {
			t.Fatalf("Turn(%q) error = %v", s, err)
		}
	}

	if len(e.runner.requests) != 1 {
		t.Fatalf("runner requests = %d, want 1", len(e.runner.requests))
	}
	req := e.runner.requests[0]
	if req.Line != "ls -la" || req.Dir != "/proj/sub" || req.Shell == nil || !*req.Shell {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(e.out.String(), "cd: /proj/sub/nowhere: No such file or directory") {
		t.Errorf("output = %s", e.out.String())
	}
}

func TestCommands_Rules(t *testing.T) {
	e := newEnv(t, provider.NewMockProvider(), "")
	ctx := context.Background()

	for _, s := range []string{"/rule command", "/rule color true", "/rule command maybe", "/rule command 1"} {
		if err := e.sess.Turn(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	if !e.sess.Rule(session.RuleCommand) {
		t.Fatal("command rule not enabled")
	}

	// Plain input is now a command
	if err := e.sess.Turn(ctx, "make build"); err != nil {
		t.Fatal(err)
	}
	if len(e.runner.requests) != 1 || e.runner.requests[0].Line != "make build" {
		t.Errorf("runner requests = %+v", e.runner.requests)
	}
	if err := e.sess.Turn(ctx, "exit"); !errors.Is(err, session.ErrExit) {
		t.Errorf("Turn(exit) error = %v, want ErrExit", err)
	}

	out := e.out.String()
	for _, want := range []string{"Wrong syntax: rule command", "Unknown rule: color", "Wrong value: maybe", "Rule command set to true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommands_HistoryManagement(t *testing.T) {
	e := newEnv(t, provider.NewMockProvider("one", "two", "two again"), "")
	ctx := context.Background()

	for _, q := range []string{"q1", "q2"} {
		if err := e.sess.Turn(ctx, q); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.sess.Turn(ctx, "/save chat.yaml"); err != nil {
		t.Fatal(err)
	}
	if err := e.sess.Turn(ctx, "/reask"); err != nil {
		t.Fatal(err)
	}
	msgs := e.hist.Messages()
	if got := msgs[len(msgs)-1].Content; got != "two again" {
		t.Errorf("after /reask last reply = %q", got)
	}

	if err := e.sess.Turn(ctx, "/revert 2"); err != nil {
		t.Fatal(err)
	}
	if e.hist.Len() != 1 {
		t.Errorf("Len() = %d after /revert 2", e.hist.Len())
	}

	if err := e.sess.Turn(ctx, "/load chat.yaml"); err != nil {
		t.Fatal(err)
	}
	if got := e.hist.Stats().Rounds; got != 2 {
		t.Errorf("Rounds = %d after /load", got)
	}

	if err := e.sess.Turn(ctx, "/stats"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(e.out.String(), "rounds: 2") {
		t.Errorf("output = %s", e.out.String())
	}
}
