// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Approval decisions and report types

package approval

import (
	"context"
	"errors"
	"strings"

	"github.com/sony-level/fourteen/internal/commit"
	"github.com/sony-level/fourteen/internal/staging"
)

// ErrPromptInterrupted wraps a prompter failure that canceled the rest of a batch
var ErrPromptInterrupted = errors.New("approval prompt interrupted")

// BatchDecision is the first answer for a whole batch
type BatchDecision int

const (
	AcceptAll BatchDecision = iota
	CancelAll
	OneByOne
)

func (d BatchDecision) String() string {
	switch d {
	case CancelAll:
		return "cancel all"
	case OneByOne:
		return "one by one"
	default:
		return "accept all"
	}
}

// ParseBatchDecision maps a/c/o answers. Empty or unknown input accepts all.
func ParseBatchDecision(input string) BatchDecision {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "c", "cancel":
		return CancelAll
	case "o", "one", "one by one":
		return OneByOne
	default:
		return AcceptAll
	}
}

// ItemDecision is the answer for a single ask
type ItemDecision int

const (
	Accept ItemDecision = iota
	Reject
	SkipRetain
)

func (d ItemDecision) String() string {
	switch d {
	case Reject:
		return "reject"
	case SkipRetain:
		return "skip"
	default:
		return "accept"
	}
}

// ParseItemDecision maps y/n/s answers. Empty or unknown input accepts.
func ParseItemDecision(input string) ItemDecision {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "n", "no":
		return Reject
	case "s", "skip":
		return SkipRetain
	default:
		return Accept
	}
}

// Disposition is what finally happened to an ask
type Disposition int

const (
	Committed Disposition = iota
	Rejected
	Skipped
)

func (d Disposition) String() string {
	switch d {
	case Rejected:
		return "rejected"
	case Skipped:
		return "skipped"
	default:
		return "committed"
	}
}

// Prompter asks the human for decisions
type Prompter interface {
	ChooseBatch(ctx context.Context, batch *staging.Batch) (BatchDecision, error)
	ChooseItem(ctx context.Context, ask *staging.PendingAsk) (ItemDecision, error)
}

// Committer applies an accepted ask
type Committer interface {
	Commit(ctx context.Context, ask *staging.PendingAsk) commit.Outcome
}

// Recorder receives conversation notes about decisions and failures
type Recorder interface {
	AddSystem(content string)
}

// Entry is the disposition of one ask
type Entry struct {
	Key         string
	Disposition Disposition
	Outcome     *commit.Outcome
}

// Report lists every ask of a batch with its disposition, in staged order
type Report struct {
	Decision BatchDecision
	Entries  []Entry
}

// Count returns how many entries have disposition d
func (r *Report) Count(d Disposition) int {
	n := 0
	for _, e := range r.Entries {
		if e.Disposition == d {
			n++
		}
	}
	return n
}

// Failed returns the committed entries whose outcome failed
func (r *Report) Failed() []Entry {
	var failed []Entry
	for _, e := range r.Entries {
		if e.Outcome != nil && !e.Outcome.Success {
			failed = append(failed, e)
		}
	}
	return failed
}
