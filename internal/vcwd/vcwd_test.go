// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Virtual working directory tests

package vcwd_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/sony-level/fourteen/internal/vcwd"
)

func newMemDir(t *testing.T, start string, dirs ...string) (*vcwd.Dir, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0755); err != nil {
			t.Fatalf("MkdirAll(%s) error = %v", d, err)
		}
	}
	dir := vcwd.New(start,
		vcwd.WithFs(fs),
		vcwd.WithStyle(vcwd.StylePOSIX),
		vcwd.WithHomeDir(func() (string, error) { return "/home/dev", nil }),
	)
	return dir, fs
}

func TestIsCd(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"cd", true},
		{"cd ..", true},
		{"cd..", true},
		{"cd src/app", true},
		{"  cd /tmp  ", true},
		{"cdrom", false},
		{"ls -la", false},
		{"echo cd", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := vcwd.IsCd(tt.input); got != tt.want {
				t.Errorf("IsCd(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNavigate_Relative(t *testing.T) {
	dir, _ := newMemDir(t, "/work", "/work/src/app")

	if err := dir.Navigate("cd src/app"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := dir.Path(); got != "/work/src/app" {
		t.Errorf("Path() = %q, want %q", got, "/work/src/app")
	}
}

func TestNavigate_Absolute(t *testing.T) {
	dir, _ := newMemDir(t, "/work", "/opt/tools")

	if err := dir.Navigate("cd /opt/tools"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := dir.Path(); got != "/opt/tools" {
		t.Errorf("Path() = %q, want %q", got, "/opt/tools")
	}
}

func TestNavigate_Home(t *testing.T) {
	dir, _ := newMemDir(t, "/work", "/home/dev/projects")

	if err := dir.Navigate("cd ~/projects"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := dir.Path(); got != "/home/dev/projects" {
		t.Errorf("Path() = %q, want %q", got, "/home/dev/projects")
	}
}

func TestNavigate_BareCd(t *testing.T) {
	dir, _ := newMemDir(t, "/work", "/work")

	if err := dir.Navigate("cd"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := dir.Path(); got != "/work" {
		t.Errorf("Path() = %q, want unchanged /work", got)
	}
}

func TestNavigate_Parent(t *testing.T) {
	for _, cmd := range []string{"cd ..", "cd.."} {
		t.Run(cmd, func(t *testing.T) {
			dir, _ := newMemDir(t, "/work/src", "/work/src")
			if err := dir.Navigate(cmd); err != nil {
				t.Fatalf("Navigate(%q) error = %v", cmd, err)
			}
			if got := dir.Path(); got != "/work" {
				t.Errorf("Path() = %q, want /work", got)
			}
		})
	}
}

func TestNavigate_Missing(t *testing.T) {
	dir, _ := newMemDir(t, "/work", "/work")

	err := dir.Navigate("cd nowhere")
	if err == nil {
		t.Fatal("Navigate() should fail for a missing directory")
	}
	if !errors.Is(err, vcwd.ErrNoSuchDirectory) {
		t.Errorf("Navigate() error = %v, want ErrNoSuchDirectory", err)
	}
	var navErr *vcwd.NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("Navigate() error type = %T, want *NavigationError", err)
	}
	if want := "cd: /work/nowhere: No such file or directory"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if got := dir.Path(); got != "/work" {
		t.Errorf("Path() = %q, want unchanged /work", got)
	}
}

func TestNavigate_NotDirectory(t *testing.T) {
	dir, fs := newMemDir(t, "/work", "/work")
	if err := afero.WriteFile(fs, "/work/main.go", []byte("package main"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := dir.Navigate("cd main.go")
	if !errors.Is(err, vcwd.ErrNotDirectory) {
		t.Errorf("Navigate() error = %v, want ErrNotDirectory", err)
	}
	if got := dir.Path(); got != "/work" {
		t.Errorf("Path() = %q, want unchanged /work", got)
	}
}

func TestNavigate_NotCd(t *testing.T) {
	dir, _ := newMemDir(t, "/work", "/work")

	if err := dir.Navigate("ls"); !errors.Is(err, vcwd.ErrNotCd) {
		t.Errorf("Navigate(ls) error = %v, want ErrNotCd", err)
	}
}

func TestNavigate_POSIXRoot(t *testing.T) {
	dir, _ := newMemDir(t, "/", "/")

	err := dir.Navigate("cd ..")
	if err == nil {
		t.Fatal("Navigate() at / should fail")
	}
	if want := "cd: ..: No such file or directory"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if got := dir.Path(); got != "/" {
		t.Errorf("Path() = %q, want /", got)
	}
}

func TestNavigate_WindowsRoot(t *testing.T) {
	tests := []struct {
		start   string
		want    string
		wantErr bool
	}{
		{start: `C:\`, want: `C:\`, wantErr: true},
		{start: `d:\`, want: `d:\`, wantErr: true},
		{start: `C:\Users`, want: `C:\`},
		{start: `C:\Users\dev\src`, want: `C:\Users\dev`},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			dir := vcwd.New(tt.start, vcwd.WithStyle(vcwd.StyleWindows), vcwd.WithFs(afero.NewMemMapFs()))
			err := dir.Navigate("cd..")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Navigate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err.Error() != "cd: ..: No such file or directory" {
				t.Errorf("Error() = %q", err.Error())
			}
			if got := dir.Path(); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNavigate_RealFilesystem(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	dir := vcwd.New(root)
	if err := dir.Navigate("cd pkg"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := dir.Path(); got != sub {
		t.Errorf("Path() = %q, want %q", got, sub)
	}
}
