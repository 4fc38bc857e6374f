// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Tests for tree rendering and git summaries

package projectctx_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/sony-level/fourteen/internal/projectctx"
)

func memProject(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := []string{
		"/proj/main.go",
		"/proj/README.md",
		"/proj/.env",
		"/proj/cmd/root.go",
		"/proj/node_modules/left-pad/index.js",
		"/proj/.hidden/secret",
		"/proj/a/b/c/d/e/deep.txt",
	}
	for _, f := range files {
		if err := fs.MkdirAll(filepath.Dir(f), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(fs, f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestTree(t *testing.T) {
	got := projectctx.Tree(memProject(t), "/proj", 4, projectctx.DefaultExcludeDirs)

	want := strings.Join([]string{
		"proj/",
		"├── a/",
		"│   └── b/",
		"│       └── c/",
		"│           └── d/",
		"├── cmd/",
		"│   └── root.go",
		"├── README.md",
		"└── main.go",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tree() mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_DepthLimit(t *testing.T) {
	got := projectctx.Tree(memProject(t), "/proj", 1, nil)

	for _, hidden := range []string{"b/", "root.go", ".env", ".hidden"} {
		if strings.Contains(got, hidden) {
			t.Errorf("Tree(depth 1) contains %q:\n%s", hidden, got)
		}
	}
	if !strings.Contains(got, "node_modules/") {
		t.Errorf("Tree() without excludes should list node_modules:\n%s", got)
	}
}

func TestTree_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	if err := os.Mkdir(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got := projectctx.Tree(nil, root, 4, nil)
	if !strings.Contains(got, "└── locked/\n    └── "+projectctx.PermissionNote) {
		t.Errorf("Tree() missing permission marker:\n%s", got)
	}
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content, msg string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatal(err)
	}
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGitSummaries(t *testing.T) {
	dir := t.TempDir()

	if got := projectctx.RecentChanges(dir, 5); got != projectctx.NoGitLog {
		t.Errorf("RecentChanges(non-repo) = %q", got)
	}
	if got := projectctx.Status(dir); got != projectctx.NotARepository {
		t.Errorf("Status(non-repo) = %q", got)
	}

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := projectctx.RecentChanges(dir, 5); got != projectctx.NoRecentChanges {
		t.Errorf("RecentChanges(empty repo) = %q", got)
	}

	commitFile(t, repo, dir, "a.txt", "one", "first commit\n\nbody")
	if got := projectctx.Status(dir); got != projectctx.CleanWorktree {
		t.Errorf("Status(clean) = %q", got)
	}

	commitFile(t, repo, dir, "b.txt", "two", "second commit")
	log := strings.Split(projectctx.RecentChanges(dir, 5), "\n")
	if len(log) != 2 {
		t.Fatalf("RecentChanges() = %v, want 2 lines", log)
	}
	if !strings.HasSuffix(log[0], " second commit") || len(strings.Fields(log[0])[0]) != 7 {
		t.Errorf("RecentChanges()[0] = %q", log[0])
	}
	if !strings.HasSuffix(log[1], " first commit") {
		t.Errorf("RecentChanges()[1] = %q", log[1])
	}
	if got := projectctx.RecentChanges(dir, 1); strings.Contains(got, "\n") {
		t.Errorf("RecentChanges(limit 1) = %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("n"), 0o644); err != nil {
		t.Fatal(err)
	}
	want := " M a.txt\n?? new.txt"
	if got := projectctx.Status(dir); got != want {
		t.Errorf("Status() = %q, want %q", got, want)
	}
}

func TestSnapshotRender(t *testing.T) {
	ctx := projectctx.Snapshot(projectctx.Config{Root: "/proj", Fs: memProject(t)})
	out := ctx.Render()

	for _, want := range []string{"Current location: /proj", "File structure:\nproj/", "Recent changes:\n", "Git status:\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "node_modules") {
		t.Error("Snapshot() did not apply default excludes")
	}
}
