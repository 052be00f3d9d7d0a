// Package vector abstracts the vector database behind the narrow surface
// this service needs: per-collection upsert, nearest-neighbor search, delete
// and membership listing. Production uses the Chroma client; development and
// tests use the in-memory store.
package vector

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable is returned when an operation needs an embedding
// function and none was injected.
var ErrEmbeddingUnavailable = errors.New("embedding function not available")

// EmbedFunc turns a text into its embedding vector. Implementations are
// expected to be safe for concurrent use.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Item is one entry to upsert into a collection.
type Item struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// SearchResult holds one query's hits as parallel arrays, ordered by
// ascending distance (lower is more relevant).
type SearchResult struct {
	IDs       []string
	Distances []float64
	Documents []string
}

// GetResult lists the ids present in a collection.
type GetResult struct {
	IDs []string
}

// Store is the vector database client surface.
type Store interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	Upsert(ctx context.Context, collection string, items []Item) error
	Search(ctx context.Context, collection string, vector []float32, limit int) (*SearchResult, error)
	Delete(ctx context.Context, collection string, ids []string) error
	Get(ctx context.Context, collection string) (*GetResult, error)
}
