package store

import (
	"context"
	"sort"
	"sync"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/processor"
)

// MemoryStore keeps artifacts in process and ranks similarity with a TF-IDF
// index rebuilt on every Upsert.
type MemoryStore struct {
	mu      sync.RWMutex
	proc    processor.Processor
	records map[string]models.Record
	index   *processor.Index
}

func NewMemoryStore(records []models.Record) *MemoryStore {
	ms := &MemoryStore{
		proc:    processor.New(),
		records: make(map[string]models.Record),
	}
	ms.upsert(records)
	return ms
}

func (ms *MemoryStore) Upsert(_ context.Context, records []models.Record) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.upsert(records)
	return nil
}

func (ms *MemoryStore) upsert(records []models.Record) {
	for _, r := range records {
		r.SimilarityScore = nil
		ms.records[r.ID] = r
	}

	ids := ms.sortedIDs()
	docs := make([]string, len(ids))
	for i, id := range ids {
		docs[i] = ms.proc.Document(ms.records[id])
	}
	ms.index = ms.proc.BuildIndex(ids, docs)
}

func (ms *MemoryStore) sortedIDs() []string {
	ids := make([]string, 0, len(ms.records))
	for id := range ms.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (ms *MemoryStore) List(_ context.Context) ([]models.Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ids := ms.sortedIDs()
	out := make([]models.Record, len(ids))
	for i, id := range ids {
		out[i] = ms.records[id]
	}
	return out, nil
}

func (ms *MemoryStore) Get(_ context.Context, id string) (*models.Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	r, ok := ms.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (ms *MemoryStore) Similar(_ context.Context, id string, limit int) ([]models.Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if _, ok := ms.records[id]; !ok {
		return nil, ErrNotFound
	}
	return ms.scored(ms.index.Similar(id, limit)), nil
}

func (ms *MemoryStore) Search(_ context.Context, query string, limit int) ([]models.Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.scored(ms.index.Search(query, limit)), nil
}

func (ms *MemoryStore) Score(_ context.Context, a, b string) (float64, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	score, ok := ms.index.Score(a, b)
	return clamp01(score), ok
}

func (ms *MemoryStore) scored(matches []processor.Match) []models.Record {
	out := make([]models.Record, 0, len(matches))
	for _, m := range matches {
		r := ms.records[m.ID]
		s := clamp01(m.Score)
		r.SimilarityScore = &s
		out = append(out, r)
	}
	return out
}

func (ms *MemoryStore) Close() {}
