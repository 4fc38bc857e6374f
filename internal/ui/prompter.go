// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Approval prompters: survey-backed answers and a previewing wrapper

package ui

import (
	"context"
	"errors"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/sony-level/fourteen/internal/approval"
	"github.com/sony-level/fourteen/internal/directive"
	"github.com/sony-level/fourteen/internal/staging"
)

// ErrInterrupted is returned when the user presses Ctrl+C at a prompt
var ErrInterrupted = errors.New("interrupted")

// OriginalFunc returns the current content of the file an edit targets
type OriginalFunc func(path string) (string, bool)

// Prompter renders the batch summary and each preview, then delegates the
// answer to an inner prompter
type Prompter struct {
	r        *Renderer
	inner    approval.Prompter
	original OriginalFunc
}

// NewPrompter wraps inner. original may be nil.
func NewPrompter(r *Renderer, inner approval.Prompter, original OriginalFunc) *Prompter {
	return &Prompter{r: r, inner: inner, original: original}
}

func (p *Prompter) ChooseBatch(ctx context.Context, batch *staging.Batch) (approval.BatchDecision, error) {
	p.r.Batch(batch)
	return p.inner.ChooseBatch(ctx, batch)
}

func (p *Prompter) ChooseItem(ctx context.Context, ask *staging.PendingAsk) (approval.ItemDecision, error) {
	var original string
	var ok bool
	if edit, isEdit := ask.Op.(directive.Edit); isEdit && p.original != nil {
		original, ok = p.original(edit.Path)
	}
	p.r.Preview(ask, original, ok)
	return p.inner.ChooseItem(ctx, ask)
}

var (
	batchOptions = []string{"a = agree all", "c = cancel all", "o = one by one"}
	itemOptions  = []string{"y = yes", "n = no", "s = skip (keep the staged file)"}
)

// SurveyPrompter answers prompts with interactive survey selects
type SurveyPrompter struct {
	opts []survey.AskOpt
}

// NewSurveyPrompter creates a survey prompter on the given terminal
func NewSurveyPrompter(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) *SurveyPrompter {
	return &SurveyPrompter{opts: []survey.AskOpt{survey.WithStdio(in, out, errOut)}}
}

func (p *SurveyPrompter) ChooseBatch(ctx context.Context, batch *staging.Batch) (approval.BatchDecision, error) {
	idx, err := p.selectOne(ctx, "DECISION", batchOptions)
	if err != nil {
		return approval.CancelAll, err
	}
	return approval.ParseBatchDecision(batchOptions[idx][:1]), nil
}

func (p *SurveyPrompter) ChooseItem(ctx context.Context, ask *staging.PendingAsk) (approval.ItemDecision, error) {
	idx, err := p.selectOne(ctx, "CONFIRM "+ask.Key, itemOptions)
	if err != nil {
		return approval.Reject, err
	}
	return approval.ParseItemDecision(itemOptions[idx][:1]), nil
}

// ReadLine asks a free-text question
func (p *SurveyPrompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var answer string
	if err := survey.AskOne(&survey.Input{Message: prompt}, &answer, p.opts...); err != nil {
		return "", mapSurveyErr(err)
	}
	return answer, nil
}

func (p *SurveyPrompter) selectOne(ctx context.Context, message string, options []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var idx int
	q := &survey.Select{Message: message, Options: options, Default: options[0]}
	if err := survey.AskOne(q, &idx, p.opts...); err != nil {
		return 0, mapSurveyErr(err)
	}
	return idx, nil
}

func mapSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrInterrupted
	}
	return err
}
