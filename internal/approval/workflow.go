// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Human approval state machine

package approval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/staging"
)

// History notes
const (
	NoteAllCanceled = "All operations canceled by user"
	noteCanceled    = "Operation %s canceled by user"
	noteSkipped     = "Operation %s skipped but the file remains"
	noteFailed      = "Operation %s failed: %s"
)

// EntryFunc is called as soon as an ask gets its disposition
type EntryFunc func(ask *staging.PendingAsk, e Entry)

// Workflow drives a batch from presentation to done
type Workflow struct {
	prompter  Prompter
	committer Committer
	notes     Recorder
	logger    *zap.Logger
	onEntry   EntryFunc
}

// NewWorkflow creates an approval workflow. notes may be nil.
func NewWorkflow(prompter Prompter, committer Committer, notes Recorder, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		prompter:  prompter,
		committer: committer,
		notes:     notes,
		logger:    logger,
	}
}

// OnEntry registers a callback for every disposition, in order
func (w *Workflow) OnEntry(fn EntryFunc) {
	w.onEntry = fn
}

// Run asks for decisions on every ask in batch and commits accepted ones.
// Each ask ends with exactly one disposition. A prompter error cancels the
// remaining asks and is returned wrapped in ErrPromptInterrupted.
func (w *Workflow) Run(ctx context.Context, batch *staging.Batch) (*Report, error) {
	report := &Report{}
	if batch == nil || batch.Empty() {
		return report, nil
	}

	decision, err := w.prompter.ChooseBatch(ctx, batch)
	if err != nil {
		w.logger.Warn("batch prompt failed, canceling", zap.Error(err))
		report.Decision = CancelAll
		w.cancelAll(batch, report)
		return report, fmt.Errorf("%w: %w", ErrPromptInterrupted, err)
	}
	report.Decision = decision

	w.logger.Debug("batch decision",
		zap.String("decision", decision.String()),
		zap.Int("asks", batch.Len()))

	switch decision {
	case CancelAll:
		w.cancelAll(batch, report)
		return report, nil
	case OneByOne:
		return report, w.oneByOne(ctx, batch, report)
	default:
		for _, ask := range batch.Asks {
			w.commit(ctx, ask, report)
		}
		return report, nil
	}
}

func (w *Workflow) oneByOne(ctx context.Context, batch *staging.Batch, report *Report) error {
	for i, ask := range batch.Asks {
		choice, err := w.prompter.ChooseItem(ctx, ask)
		if err != nil {
			w.logger.Warn("item prompt failed, canceling the rest",
				zap.String("key", ask.Key),
				zap.Error(err))
			for _, rest := range batch.Asks[i:] {
				w.reject(rest, report)
			}
			return fmt.Errorf("%w: %w", ErrPromptInterrupted, err)
		}

		switch choice {
		case Reject:
			w.reject(ask, report)
		case SkipRetain:
			w.note(fmt.Sprintf(noteSkipped, ask.Key))
			w.record(ask, report, Entry{Key: ask.Key, Disposition: Skipped})
		default:
			w.commit(ctx, ask, report)
		}
	}
	return nil
}

func (w *Workflow) cancelAll(batch *staging.Batch, report *Report) {
	if err := batch.ReleaseAll(); err != nil {
		w.logger.Warn("failed to release staged content", zap.Error(err))
	}
	w.note(NoteAllCanceled)
	for _, ask := range batch.Asks {
		w.record(ask, report, Entry{Key: ask.Key, Disposition: Rejected})
	}
}

func (w *Workflow) reject(ask *staging.PendingAsk, report *Report) {
	if err := ask.Staged.Release(); err != nil {
		w.logger.Warn("failed to release staged content",
			zap.String("key", ask.Key),
			zap.Error(err))
	}
	w.note(fmt.Sprintf(noteCanceled, ask.Key))
	w.record(ask, report, Entry{Key: ask.Key, Disposition: Rejected})
}

func (w *Workflow) commit(ctx context.Context, ask *staging.PendingAsk, report *Report) {
	out := w.committer.Commit(ctx, ask)
	if !out.Success {
		reason := out.Output
		if reason == "" && out.Err != nil {
			reason = out.Err.Error()
		}
		w.note(fmt.Sprintf(noteFailed, ask.Key, reason))
	}
	w.record(ask, report, Entry{Key: ask.Key, Disposition: Committed, Outcome: &out})
}

func (w *Workflow) record(ask *staging.PendingAsk, report *Report, e Entry) {
	report.Entries = append(report.Entries, e)
	if w.onEntry != nil {
		w.onEntry(ask, e)
	}
}

func (w *Workflow) note(text string) {
	if w.notes != nil {
		w.notes.AddSystem(text)
	}
}
