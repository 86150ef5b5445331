package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-manga-series/models"
)

// Memory is a bounded in-process store. Least recently used series are evicted first.
type Memory struct {
	mu    sync.Mutex
	cache *lru.Cache[string, models.SeriesRecord]
}

// NewMemory returns a store holding at most size series.
func NewMemory(size int) (*Memory, error) {
	cache, err := lru.New[string, models.SeriesRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Memory{cache: cache}, nil
}

// GetSeries returns the stored record for mangaID when it is complete.
func (m *Memory) GetSeries(_ context.Context, mangaID string) (models.SeriesRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.cache.Get(mangaID)
	if !ok || !rec.Complete {
		return models.SeriesRecord{}, false, nil
	}
	return rec.Clone(), true, nil
}

// GetField returns one stored field value for mangaID.
func (m *Memory) GetField(_ context.Context, mangaID, field string) (any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.cache.Get(mangaID)
	if !ok {
		return nil, false, nil
	}
	v, ok := rec.Value(field)
	if !ok {
		return nil, false, nil
	}
	return models.CloneValue(v), true, nil
}

// PutSeries merges rec into the stored record. Completeness is never lowered.
func (m *Memory) PutSeries(_ context.Context, rec models.SeriesRecord) error {
	if rec.MangaID == "" {
		return fmt.Errorf("put series: empty manga id")
	}
	for field, v := range rec.Fields {
		if _, err := encodeValue(v); err != nil {
			return fmt.Errorf("put series %s field %s: %w", rec.MangaID, field, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	merged, ok := m.cache.Peek(rec.MangaID)
	if ok {
		merged = merged.Clone()
	} else {
		merged = models.NewSeriesRecord(rec.MangaID)
	}
	for field, v := range rec.Fields {
		merged.Fields[field] = models.CloneValue(v)
	}
	merged.Complete = merged.Complete || rec.Complete
	m.cache.Add(rec.MangaID, merged)
	return nil
}

// ListSeries returns every complete record, ordered by id.
func (m *Memory) ListSeries(_ context.Context) ([]models.SeriesRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.SeriesRecord, 0, m.cache.Len())
	for _, key := range m.cache.Keys() {
		rec, ok := m.cache.Peek(key)
		if !ok || !rec.Complete {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MangaID < out[j].MangaID })
	return out, nil
}

// Len reports how many series are held, complete or not.
func (m *Memory) Len() int {
	return m.cache.Len()
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
