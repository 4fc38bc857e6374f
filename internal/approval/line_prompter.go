// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Plain-text prompter for non-interactive input

package approval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sony-level/fourteen/internal/staging"
)

// LinePrompter reads one answer per line from an io.Reader
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading from in and writing questions to out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	if out == nil {
		out = io.Discard
	}
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// ChooseBatch asks for a/c/o
func (p *LinePrompter) ChooseBatch(ctx context.Context, batch *staging.Batch) (BatchDecision, error) {
	fmt.Fprintf(p.out, "Apply %d operation(s)? [a]ccept all / [c]ancel all / [o]ne by one (default a): ", batch.Len())
	answer, err := p.readLine(ctx)
	if err != nil {
		return CancelAll, err
	}
	return ParseBatchDecision(answer), nil
}

// ChooseItem asks for y/n/s
func (p *LinePrompter) ChooseItem(ctx context.Context, ask *staging.PendingAsk) (ItemDecision, error) {
	fmt.Fprintf(p.out, "Apply %s? [y]es / [n]o / [s]kip and keep staged file (default y): ", ask.Key)
	answer, err := p.readLine(ctx)
	if err != nil {
		return Reject, err
	}
	return ParseItemDecision(answer), nil
}

// ReadLine writes prompt and reads one line of input
func (p *LinePrompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	return p.readLine(ctx)
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		// A final answer without a newline still counts.
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
