// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Project context types

package projectctx

import (
	"github.com/spf13/afero"
)

// DefaultMaxDepth is the deepest tree level rendered
const DefaultMaxDepth = 4

// DefaultExcludeDirs are never descended into or listed
var DefaultExcludeDirs = []string{".git", "__pycache__", "node_modules", ".idea", ".vscode", "venv"}

// Fallback texts when git has nothing to say
const (
	NoRecentChanges = "No recent changes found"
	NoGitLog        = "Git not available or no changes"
	CleanWorktree   = "Working directory clean"
	NotARepository  = "Not a git repository or git not available"
	PermissionNote  = "[Permission Denied]"
)

// Config controls a context snapshot
type Config struct {
	Root        string
	MaxDepth    int
	ExcludeDirs []string
	// Fs is used for the tree. Git always reads the real filesystem.
	Fs afero.Fs
	// CommitLimit caps the recent changes list
	CommitLimit int
}

// Context is a snapshot of the directory the session is in
type Context struct {
	Root          string
	Tree          string
	RecentChanges string
	GitStatus     string
}
