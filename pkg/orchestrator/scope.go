package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/xhad/museum/internal/models"
)

var (
	// ErrScopeClosed is returned for results that arrive after Close.
	ErrScopeClosed = errors.New("scope closed")
	// ErrSuperseded is returned to a comparison replaced by a newer one.
	ErrSuperseded = errors.New("request superseded")
)

// Scope ties a set of requests to the lifetime of one view. Closing the scope
// cancels everything still in flight and discards late results.
type Scope struct {
	o      *Orchestrator
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	compareSeq    uint64
	compareCancel context.CancelFunc
}

// NewScope starts a scope bound to parent.
func (o *Orchestrator) NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{o: o, ctx: ctx, cancel: cancel}
}

func (s *Scope) Context() context.Context { return s.ctx }

// Close cancels in-flight requests. It is safe to call more than once.
func (s *Scope) Close() {
	s.cancel()
}

func (s *Scope) Artifacts() ([]models.Artifact, Source, error) {
	items, src, err := s.o.Artifacts(s.ctx)
	return settle(s, items, src, err)
}

func (s *Scope) Artifact(id string) (*models.Artifact, Source, error) {
	a, src, err := s.o.Artifact(s.ctx, id)
	return settle(s, a, src, err)
}

func (s *Scope) Similar(id string, limit int) ([]models.Artifact, Source, error) {
	items, src, err := s.o.Similar(s.ctx, id, limit)
	return settle(s, items, src, err)
}

func (s *Scope) Explanation(id string) (string, Source, error) {
	text, src, err := s.o.Explanation(s.ctx, id)
	return settle(s, text, src, err)
}

func (s *Scope) Detail(id string) (*Detail, error) {
	d, err := s.o.Detail(s.ctx, id)
	d, _, err = settle(s, d, SourceMock, err)
	return d, err
}

func (s *Scope) Hotspots(a models.Artifact) ([]models.Hotspot, Source, error) {
	spots, src, err := s.o.Hotspots(s.ctx, a)
	return settle(s, spots, src, err)
}

// Compare runs a comparison owned by this scope. Starting another comparison
// cancels this one, so only the latest result is ever delivered.
func (s *Scope) Compare(a, b *models.Artifact) (*models.ComparisonResult, Source, error) {
	s.mu.Lock()
	if s.compareCancel != nil {
		s.compareCancel()
	}
	s.compareSeq++
	seq := s.compareSeq
	ctx, cancel := context.WithCancel(s.ctx)
	s.compareCancel = cancel
	s.mu.Unlock()
	defer cancel()

	res, src, err := s.o.Compare(ctx, a, b)

	s.mu.Lock()
	latest := seq == s.compareSeq
	s.mu.Unlock()

	if s.ctx.Err() != nil {
		return nil, src, ErrScopeClosed
	}
	if !latest {
		return nil, src, ErrSuperseded
	}
	return res, src, err
}

// Regenerate discards the current comparison and recomputes it from scratch.
func (s *Scope) Regenerate(a, b *models.Artifact) (*models.ComparisonResult, Source, error) {
	return s.Compare(a, b)
}

func settle[T any](s *Scope, v T, src Source, err error) (T, Source, error) {
	if s.ctx.Err() != nil {
		var zero T
		return zero, src, ErrScopeClosed
	}
	return v, src, err
}
