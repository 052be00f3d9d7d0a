package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ChromaStore talks to a ChromaDB server over its REST API. Collection names
// are resolved to collection ids once and cached for the life of the process.
type ChromaStore struct {
	baseURL string
	client  *http.Client

	mu  sync.RWMutex
	ids map[string]string // collection name -> collection id
}

// NewChromaStore creates a Chroma client for the given base URL
// (e.g. http://localhost:8000).
func NewChromaStore(baseURL string) *ChromaStore {
	return &ChromaStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		ids:     make(map[string]string),
	}
}

type chromaCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *ChromaStore) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("chroma request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read chroma response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse chroma response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// lookupCollection resolves a collection name to its id without creating it.
func (s *ChromaStore) lookupCollection(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	id, ok := s.ids[name]
	s.mu.RUnlock()
	if ok {
		return id, nil
	}

	var col chromaCollection
	status, err := s.do(ctx, http.MethodGet, "/api/v1/collections/"+name, nil, &col)
	if status == http.StatusNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.ids[name] = col.ID
	s.mu.Unlock()
	return col.ID, nil
}

// ensureCollection resolves a collection name to its id, creating the
// collection when it does not exist yet.
func (s *ChromaStore) ensureCollection(ctx context.Context, name string) (string, error) {
	id, err := s.lookupCollection(ctx, name)
	if err != nil || id != "" {
		return id, err
	}

	var col chromaCollection
	payload := map[string]interface{}{"name": name, "get_or_create": true}
	if _, err := s.do(ctx, http.MethodPost, "/api/v1/collections", payload, &col); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.ids[name] = col.ID
	s.mu.Unlock()
	return col.ID, nil
}

// HasCollection reports whether a collection exists.
func (s *ChromaStore) HasCollection(ctx context.Context, name string) (bool, error) {
	id, err := s.lookupCollection(ctx, name)
	if err != nil {
		return false, err
	}
	return id != "", nil
}

// Upsert inserts or replaces items in a collection, creating it if needed.
func (s *ChromaStore) Upsert(ctx context.Context, collection string, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	id, err := s.ensureCollection(ctx, collection)
	if err != nil {
		return err
	}

	ids := make([]string, len(items))
	embeddings := make([][]float32, len(items))
	documents := make([]string, len(items))
	metadatas := make([]map[string]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
		embeddings[i] = item.Vector
		documents[i] = item.Text
		metadatas[i] = item.Metadata
	}

	payload := map[string]interface{}{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	_, err = s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/upsert", payload, nil)
	return err
}

// Search runs a nearest-neighbor query and returns hits ordered by distance.
func (s *ChromaStore) Search(ctx context.Context, collection string, vector []float32, limit int) (*SearchResult, error) {
	id, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return &SearchResult{}, nil
	}

	payload := map[string]interface{}{
		"query_embeddings": [][]float32{vector},
		"n_results":        limit,
		"include":          []string{"distances", "documents"},
	}

	var out struct {
		IDs       [][]string  `json:"ids"`
		Distances [][]float64 `json:"distances"`
		Documents [][]string  `json:"documents"`
	}
	if _, err := s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/query", payload, &out); err != nil {
		return nil, err
	}

	result := &SearchResult{}
	if len(out.IDs) > 0 {
		result.IDs = out.IDs[0]
	}
	if len(out.Distances) > 0 {
		result.Distances = out.Distances[0]
	}
	if len(out.Documents) > 0 {
		result.Documents = out.Documents[0]
	}
	return result, nil
}

// Delete removes entries by id from a collection.
func (s *ChromaStore) Delete(ctx context.Context, collection string, ids []string) error {
	id, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}

	payload := map[string]interface{}{"ids": ids}
	_, err = s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/delete", payload, nil)
	return err
}

// Get lists the ids stored in a collection.
func (s *ChromaStore) Get(ctx context.Context, collection string) (*GetResult, error) {
	id, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return &GetResult{}, nil
	}

	var out struct {
		IDs []string `json:"ids"`
	}
	payload := map[string]interface{}{"include": []string{}}
	if _, err := s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/get", payload, &out); err != nil {
		return nil, err
	}

	return &GetResult{IDs: out.IDs}, nil
}
