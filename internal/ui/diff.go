// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Line diff for edit previews

package ui

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineDiff renders a unified-style line diff of before and after. Unchanged
// runs longer than 2*context lines are collapsed.
func LineDiff(before, after string, context int) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for i, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				sb.WriteString(addStyle.Render("+ "+line) + "\n")
			case diffmatchpatch.DiffDelete:
				sb.WriteString(delStyle.Render("- "+line) + "\n")
			}
		}
		if d.Type == diffmatchpatch.DiffEqual {
			writeEqual(&sb, splitLines(d.Text), context, i == 0, i == len(diffs)-1)
		}
	}
	return sb.String()
}

func writeEqual(sb *strings.Builder, lines []string, context int, first, last bool) {
	head, tail := context, context
	if first {
		head = 0
	}
	if last {
		tail = 0
	}
	if len(lines) <= head+tail {
		for _, l := range lines {
			sb.WriteString("  " + l + "\n")
		}
		return
	}
	for _, l := range lines[:head] {
		sb.WriteString("  " + l + "\n")
	}
	sb.WriteString(faintStyle.Render("  ...") + "\n")
	for _, l := range lines[len(lines)-tail:] {
		sb.WriteString("  " + l + "\n")
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
