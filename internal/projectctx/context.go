// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Project context snapshot and rendering

package projectctx

import (
	"strings"
)

const rule = "=================================================="

// Snapshot collects the tree and git state of cfg.Root
func Snapshot(cfg Config) *Context {
	exclude := cfg.ExcludeDirs
	if exclude == nil {
		exclude = DefaultExcludeDirs
	}
	return &Context{
		Root:          cfg.Root,
		Tree:          Tree(cfg.Fs, cfg.Root, cfg.MaxDepth, exclude),
		RecentChanges: RecentChanges(cfg.Root, cfg.CommitLimit),
		GitStatus:     Status(cfg.Root),
	}
}

// Render formats the snapshot as the prefix sent before each question
func (c *Context) Render() string {
	var sb strings.Builder
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("Project context\n")
	sb.WriteString(rule + "\n")
	sb.WriteString("Current location: " + c.Root + "\n\n")
	sb.WriteString("File structure:\n" + c.Tree + "\n")
	sb.WriteString("Recent changes:\n" + c.RecentChanges + "\n\n")
	sb.WriteString("Git status:\n" + c.GitStatus + "\n")
	sb.WriteString(rule + "\n")
	return sb.String()
}
