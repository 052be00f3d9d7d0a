package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used when no CHROMA_URL is configured
// (development) and in tests. Search ranks by cosine distance.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Item
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Item)}
}

// HasCollection reports whether a collection exists.
func (s *MemoryStore) HasCollection(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// Upsert inserts or replaces items, creating the collection if needed.
func (s *MemoryStore) Upsert(_ context.Context, collection string, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]Item)
		s.collections[collection] = col
	}
	for _, item := range items {
		col[item.ID] = item
	}
	return nil
}

// Search returns up to limit items ordered by ascending cosine distance.
func (s *MemoryStore) Search(_ context.Context, collection string, vector []float32, limit int) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return &SearchResult{}, nil
	}

	type scored struct {
		item     Item
		distance float64
	}
	hits := make([]scored, 0, len(col))
	for _, item := range col {
		hits = append(hits, scored{item: item, distance: cosineDistance(vector, item.Vector)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].item.ID < hits[j].item.ID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	result := &SearchResult{
		IDs:       make([]string, len(hits)),
		Distances: make([]float64, len(hits)),
		Documents: make([]string, len(hits)),
	}
	for i, h := range hits {
		result.IDs[i] = h.item.ID
		result.Distances[i] = h.distance
		result.Documents[i] = h.item.Text
	}
	return result, nil
}

// Delete removes entries by id.
func (s *MemoryStore) Delete(_ context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil
	}
	for _, id := range ids {
		delete(col, id)
	}
	return nil
}

// Get lists the ids stored in a collection.
func (s *MemoryStore) Get(_ context.Context, collection string) (*GetResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return &GetResult{}, nil
	}
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &GetResult{IDs: ids}, nil
}

func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
