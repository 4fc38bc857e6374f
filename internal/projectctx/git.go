// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Recent commits and worktree status through go-git

package projectctx

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const defaultCommitLimit = 5

func openRepo(root string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
}

// RecentChanges lists the last limit commits as "<short hash> <subject>"
func RecentChanges(root string, limit int) string {
	if limit <= 0 {
		limit = defaultCommitLimit
	}

	repo, err := openRepo(root)
	if err != nil {
		return NoGitLog
	}
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		// An empty repository has no HEAD yet
		return NoRecentChanges
	}
	defer iter.Close()

	var lines []string
	err = iter.ForEach(func(c *object.Commit) error {
		if len(lines) >= limit {
			return storer.ErrStop
		}
		subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
		lines = append(lines, fmt.Sprintf("%s %s", c.Hash.String()[:7], subject))
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return NoGitLog
	}
	if len(lines) == 0 {
		return NoRecentChanges
	}
	return strings.Join(lines, "\n")
}

// Status renders the worktree status in short format, sorted by path
func Status(root string) string {
	repo, err := openRepo(root)
	if err != nil {
		return NotARepository
	}
	wt, err := repo.Worktree()
	if err != nil {
		return NotARepository
	}
	status, err := wt.Status()
	if err != nil {
		return NotARepository
	}
	if status.IsClean() {
		return CleanWorktree
	}

	paths := make([]string, 0, len(status))
	for p := range status {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		fs := status[p]
		lines = append(lines, fmt.Sprintf("%c%c %s", fs.Staging, fs.Worktree, p))
	}
	return strings.Join(lines, "\n")
}
