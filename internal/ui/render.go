// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Terminal output: banner, status lines, batch summaries and previews

package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/sony-level/fourteen/internal/commit"
	"github.com/sony-level/fourteen/internal/directive"
	"github.com/sony-level/fourteen/internal/staging"
)

// Banner is printed when the interactive loop starts
const Banner = `
  __                      _
 / _| ___  _   _ _ __ ___| |_ ___  ___ _ __
| |_ / _ \| | | | '__/ _ \ __/ _ \/ _ \ '_ \
|  _| (_) | |_| | | |  __/ ||  __/  __/ | | |
|_|  \___/ \__,_|_|  \___|\__\___|\___|_| |_|
`

const (
	previewLines = 20
	diffContext  = 2
)

// Renderer writes styled output
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = io.Discard
	}
	return &Renderer{out: out}
}

// Writer returns the underlying writer
func (r *Renderer) Writer() io.Writer {
	return r.out
}

func (r *Renderer) Banner() {
	fmt.Fprintln(r.out, bannerStyle.Render(Banner))
}

// Prompt returns the question prompt for cwd
func (r *Renderer) Prompt(cwd string) string {
	return promptStyle.Render(fmt.Sprintf("ASK %s>>>", cwd)) + " "
}

func (r *Renderer) Success(format string, args ...any) {
	fmt.Fprintln(r.out, successStyle.Render("[+] "+fmt.Sprintf(format, args...)))
}

func (r *Renderer) Failure(format string, args ...any) {
	fmt.Fprintln(r.out, errorStyle.Render("[-] "+fmt.Sprintf(format, args...)))
}

func (r *Renderer) Note(format string, args ...any) {
	fmt.Fprintln(r.out, noteStyle.Render("[*] "+fmt.Sprintf(format, args...)))
}

func (r *Renderer) Warn(format string, args ...any) {
	fmt.Fprintln(r.out, warnStyle.Render("[!] "+fmt.Sprintf(format, args...)))
}

// Fatal prints a captured top-level error
func (r *Renderer) Fatal(err error) {
	fmt.Fprintln(r.out, errorStyle.Render(fmt.Sprintf("<#!> Fatal error captured: %v", err)))
}

// Prose prints assistant text as is
func (r *Renderer) Prose(lines []string) {
	for _, l := range lines {
		fmt.Fprintln(r.out, l)
	}
}

// Clear clears the screen
func (r *Renderer) Clear() {
	fmt.Fprint(r.out, "\033[H\033[2J")
}

// Describe summarizes an operation on one line
func Describe(op directive.Operation) string {
	switch op := op.(type) {
	case directive.Run:
		return "Command: " + strings.Join(op.Command, " ")
	case directive.Edit:
		return "FC: edit " + op.Path
	case directive.Create:
		return "FC: create " + op.Path
	case directive.Delete:
		return "FC: delete " + op.Path
	case directive.NewDir:
		return "FC: create directory " + op.Path
	case directive.Rename:
		return "FC: rename " + op.Path + "->" + op.NewName
	case directive.Read:
		return "FC: read " + op.Path
	default:
		return fmt.Sprintf("unknown operation %T", op)
	}
}

// Batch prints the list of pending asks and any staging failures
func (r *Renderer) Batch(batch *staging.Batch) {
	for _, f := range batch.Failures {
		r.Warn("%v", f)
	}
	if batch.Empty() {
		return
	}
	lines := []string{titleStyle.Render("All Operations")}
	for _, ask := range batch.Asks {
		lines = append(lines, Describe(ask.Op))
	}
	fmt.Fprintln(r.out, boxStyle.Render(strings.Join(lines, "\n")))
}

// Preview prints one ask before its confirmation. original is the current
// content of an edited file, if it could be read.
func (r *Renderer) Preview(ask *staging.PendingAsk, original string, hasOriginal bool) {
	var body string
	title := "FileChange?"

	switch op := ask.Op.(type) {
	case directive.Run:
		title = "Execute?"
		body = strings.Join(op.Command, " ")
	case directive.Edit:
		body = Describe(op) + "\n" + faintStyle.Render("└── "+stagedPath(ask))
		if hasOriginal {
			body += "\n\n" + strings.TrimRight(LineDiff(original, op.Content, diffContext), "\n")
		} else {
			body += "\n\n" + headLines(op.Content, previewLines)
		}
	case directive.Create:
		body = Describe(op) + "\n" + faintStyle.Render("└── "+stagedPath(ask)) +
			"\n\n" + headLines(op.Content, previewLines)
	default:
		body = Describe(op)
	}

	fmt.Fprintln(r.out, boxStyle.Render(titleStyle.Render(title)+"\n"+body))
}

// Outcome prints the result of a commit
func (r *Renderer) Outcome(out commit.Outcome) {
	if out.Success {
		msg := strings.TrimRight(out.Output, "\n")
		if msg == "" {
			msg = "Done"
		}
		r.Success("%s", msg)
		return
	}
	msg := strings.TrimRight(out.Output, "\n")
	if msg == "" && out.Err != nil {
		msg = out.Err.Error()
	}
	r.Failure("%s", msg)
}

func stagedPath(ask *staging.PendingAsk) string {
	if ask.Staged == nil {
		return ""
	}
	return ask.Staged.Path()
}

func headLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:n], "\n") + "\n" + faintStyle.Render(fmt.Sprintf("... %d more lines", len(lines)-n))
}
