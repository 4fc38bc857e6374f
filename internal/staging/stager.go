// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Stages parsed operations into pending asks

package staging

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/directive"
)

// WorkingDir reports the directory holding files are placed under
type WorkingDir interface {
	Path() string
}

// Stager turns operations into a batch of pending asks
type Stager struct {
	ws     *Workspace
	cwd    WorkingDir
	logger *zap.Logger
}

// NewStager creates a stager writing holding files into ws under the
// current directory of cwd. A nil cwd holds everything under ws.BaseDir.
func NewStager(ws *Workspace, cwd WorkingDir, logger *zap.Logger) *Stager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stager{ws: ws, cwd: cwd, logger: logger}
}

// Workspace returns the holding workspace
func (s *Stager) Workspace() *Workspace {
	return s.ws
}

// Stage stages ops in order. Reads are returned for immediate handling.
// A holding write failure drops only the affected ask.
func (s *Stager) Stage(ops []directive.Operation) (*Batch, error) {
	batch := &Batch{}
	base := s.base()
	runs := 0

	for _, op := range ops {
		switch o := op.(type) {
		case directive.Read:
			batch.Reads = append(batch.Reads, o)
		case directive.Run:
			key := fmt.Sprintf("%s%d", RunKeyPrefix, runs)
			runs++
			s.put(batch, &PendingAsk{Key: key, Kind: KindRun, Op: o})
		case directive.Create:
			s.stageContent(batch, base, o, o.Path, o.Content)
		case directive.Edit:
			s.stageContent(batch, base, o, o.Path, o.Content)
		case directive.Delete:
			s.put(batch, &PendingAsk{Key: o.Path, Kind: KindFile, Op: o})
		case directive.NewDir:
			s.put(batch, &PendingAsk{Key: o.Path, Kind: KindFile, Op: o})
		case directive.Rename:
			s.put(batch, &PendingAsk{Key: o.Path, Kind: KindFile, Op: o})
		default:
			_ = batch.ReleaseAll()
			return nil, fmt.Errorf("%w: %T", ErrUnknownOperation, op)
		}
	}

	s.logger.Debug("staged batch",
		zap.Int("asks", len(batch.Asks)),
		zap.Int("reads", len(batch.Reads)),
		zap.Int("failures", len(batch.Failures)))

	return batch, nil
}

// put adds ask, replacing and releasing an earlier ask with the same key
func (s *Stager) put(batch *Batch, ask *PendingAsk) {
	if idx := batch.indexOf(ask.Kind, ask.Key); idx >= 0 {
		s.release(batch.Asks[idx])
		batch.Asks[idx] = ask
		return
	}
	batch.Asks = append(batch.Asks, ask)
}

func (s *Stager) base() string {
	if s.cwd == nil {
		return s.ws.BaseDir
	}
	return s.cwd.Path()
}

func (s *Stager) stageContent(batch *Batch, base string, op directive.Operation, path, content string) {
	// The superseded ask gives up its holding file before a new one is chosen.
	idx := batch.indexOf(KindFile, path)
	if idx >= 0 {
		s.release(batch.Asks[idx])
	}

	staged, err := s.ws.Hold(base, s.holdingName(batch, base, path), content)
	if err != nil {
		if idx >= 0 {
			batch.Asks = append(batch.Asks[:idx], batch.Asks[idx+1:]...)
		}
		failure := &Failure{Path: path, Err: err}
		batch.Failures = append(batch.Failures, failure)
		s.logger.Warn("staging failed",
			zap.String("path", path),
			zap.Error(err))
		return
	}

	ask := &PendingAsk{Key: path, Kind: KindFile, Op: op, Staged: staged}
	if idx >= 0 {
		batch.Asks[idx] = ask
		return
	}
	batch.Asks = append(batch.Asks, ask)
}

// holdingName picks tempfile<base>, adding -N when the name is taken
// by a live ask or a retained file
func (s *Stager) holdingName(batch *Batch, base, target string) string {
	name := HoldingPrefix + baseName(target)
	candidate := name
	for n := 1; s.taken(batch, base, candidate); n++ {
		candidate = fmt.Sprintf("%s-%d", name, n)
	}
	return candidate
}

func (s *Stager) taken(batch *Batch, base, name string) bool {
	path := s.ws.HoldingPath(base, name)
	if batch.liveHolding(path) {
		return true
	}
	ok, err := afero.Exists(s.ws.Fs(), path)
	return err == nil && ok
}

func (s *Stager) release(ask *PendingAsk) {
	if err := ask.Staged.Release(); err != nil {
		s.logger.Warn("failed to release superseded content",
			zap.String("key", ask.Key),
			zap.Error(err))
	}
}

// baseName returns the last path element, accepting both separators
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
