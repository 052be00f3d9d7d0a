package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"alumnihuddle/internal/models"
	"alumnihuddle/internal/vector"
)

// indexPageLimit bounds how many mentors a single batch run loads per huddle.
const indexPageLimit = 1000

// MentorSource is the slice of the mentor directory the retrieval service
// needs.
type MentorSource interface {
	GetByHuddle(huddleID string, offset, limit int) ([]models.Mentor, error)
	GetByID(mentorID string) (*models.Mentor, error)
	HuddleIDsWithMentors() ([]string, error)
}

// HuddleByID resolves a huddle id to its record, for batch reporting.
type HuddleByID interface {
	GetByID(id string) (*models.Huddle, error)
}

// MentorRAGService maintains one vector collection per huddle and answers
// nearest-neighbor mentor searches against it. The collection is a derived
// view of the profiles table: indexing re-renders and re-embeds documents,
// it never diffs, and it never retracts entries on its own - removal is the
// explicit RemoveMentor operation.
type MentorRAGService struct {
	mentors MentorSource
	huddles HuddleByID
	store   vector.Store
	embed   vector.EmbedFunc
}

// NewMentorRAGService creates a retrieval service. embed may be nil, in
// which case index and search operations fail with ErrEmbeddingUnavailable.
func NewMentorRAGService(mentors MentorSource, huddles HuddleByID, store vector.Store, embed vector.EmbedFunc) *MentorRAGService {
	return &MentorRAGService{
		mentors: mentors,
		huddles: huddles,
		store:   store,
		embed:   embed,
	}
}

// CollectionName returns the vector collection holding a huddle's mentors.
func CollectionName(huddleID string) string {
	return "mentors-" + huddleID
}

// IndexMentor renders, embeds and upserts one mentor into its huddle's
// collection, keyed by mentor id.
func (s *MentorRAGService) IndexMentor(ctx context.Context, mentor *models.Mentor) error {
	if s.embed == nil {
		return vector.ErrEmbeddingUnavailable
	}

	document := mentor.ToDocument()
	embedding, err := s.embed(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to embed mentor %s: %w", mentor.ID, err)
	}

	err = s.store.Upsert(ctx, CollectionName(mentor.HuddleID), []vector.Item{{
		ID:       mentor.ID,
		Vector:   embedding,
		Text:     document,
		Metadata: mentor.Metadata(),
	}})
	if err != nil {
		return fmt.Errorf("failed to upsert mentor %s: %w", mentor.ID, err)
	}

	return nil
}

// IndexAllForHuddle indexes every visible mentor of a huddle. Without an
// embedding function the batch refuses to start; once started, a single
// mentor's failure is counted, not raised - the batch always completes.
func (s *MentorRAGService) IndexAllForHuddle(ctx context.Context, huddleID string) (models.IndexResult, error) {
	if s.embed == nil {
		return models.IndexResult{}, vector.ErrEmbeddingUnavailable
	}

	mentors, err := s.mentors.GetByHuddle(huddleID, 0, indexPageLimit)
	if err != nil {
		return models.IndexResult{}, err
	}

	result := models.IndexResult{Total: len(mentors)}
	for i := range mentors {
		if err := s.IndexMentor(ctx, &mentors[i]); err != nil {
			log.Printf("⚠️  [MENTOR-RAG] Failed to index mentor %s: %v", mentors[i].ID, err)
			result.Failed++
			continue
		}
		result.Indexed++
	}

	recordMentorIndex(result)
	log.Printf("✅ [MENTOR-RAG] Indexed %d/%d mentors for huddle %s", result.Indexed, result.Total, huddleID)
	return result, nil
}

// IndexAllHuddles runs the per-huddle indexing for every huddle that has at
// least one visible mentor, keyed by display name for reporting. Huddles
// whose record cannot be resolved are keyed by id.
func (s *MentorRAGService) IndexAllHuddles(ctx context.Context) (map[string]models.IndexResult, error) {
	if s.embed == nil {
		return nil, vector.ErrEmbeddingUnavailable
	}

	huddleIDs, err := s.mentors.HuddleIDsWithMentors()
	if err != nil {
		return nil, err
	}

	results := make(map[string]models.IndexResult, len(huddleIDs))
	for _, huddleID := range huddleIDs {
		name := huddleID
		if huddle, err := s.huddles.GetByID(huddleID); err == nil && huddle != nil {
			name = huddle.Name
		}

		result, err := s.IndexAllForHuddle(ctx, huddleID)
		if err != nil {
			log.Printf("⚠️  [MENTOR-RAG] Failed to index huddle %s: %v", huddleID, err)
			continue
		}
		results[name] = result
	}

	return results, nil
}

// Search embeds the query and returns ranked mentors from a huddle's
// collection. Internal failures degrade to an empty list rather than an
// error so the chat surface stays up through a store or embedding outage;
// only a missing embedding function is reported to the caller. A huddle
// with no collection yet returns an empty list, and hits whose mentor row
// has vanished since indexing are dropped.
func (s *MentorRAGService) Search(ctx context.Context, huddleID, query string, limit int) ([]models.MentorSearchResult, error) {
	if s.embed == nil {
		return nil, vector.ErrEmbeddingUnavailable
	}

	start := time.Now()
	collection := CollectionName(huddleID)

	exists, err := s.store.HasCollection(ctx, collection)
	if err != nil {
		log.Printf("⚠️  [MENTOR-RAG] Collection check failed for huddle %s: %v", huddleID, err)
		return []models.MentorSearchResult{}, nil
	}
	if !exists {
		log.Printf("⚠️  [MENTOR-RAG] No mentor collection for huddle %s", huddleID)
		return []models.MentorSearchResult{}, nil
	}

	embedding, err := s.embed(ctx, query)
	if err != nil {
		log.Printf("⚠️  [MENTOR-RAG] Failed to embed query for huddle %s: %v", huddleID, err)
		return []models.MentorSearchResult{}, nil
	}

	hits, err := s.store.Search(ctx, collection, embedding, limit)
	if err != nil {
		log.Printf("⚠️  [MENTOR-RAG] Search failed for huddle %s: %v", huddleID, err)
		return []models.MentorSearchResult{}, nil
	}

	results := make([]models.MentorSearchResult, 0, len(hits.IDs))
	for i, mentorID := range hits.IDs {
		// Metadata alone cannot produce the full response shape; hits are
		// re-fetched, and mentors deleted since indexing silently fall out.
		mentor, err := s.mentors.GetByID(mentorID)
		if err != nil || mentor == nil {
			continue
		}

		result := models.MentorSearchResult{Mentor: *mentor}
		if i < len(hits.Distances) {
			result.Score = hits.Distances[i]
		}
		if i < len(hits.Documents) {
			result.DocumentText = hits.Documents[i]
		}
		results = append(results, result)
	}

	observeMentorSearch(time.Since(start))
	return results, nil
}

// RemoveMentor deletes one mentor's entry from its huddle's collection.
func (s *MentorRAGService) RemoveMentor(ctx context.Context, mentorID, huddleID string) error {
	if err := s.store.Delete(ctx, CollectionName(huddleID), []string{mentorID}); err != nil {
		return fmt.Errorf("failed to remove mentor %s: %w", mentorID, err)
	}
	log.Printf("🗑️  [MENTOR-RAG] Removed mentor %s from index", mentorID)
	return nil
}

// CollectionStats reports whether a huddle's collection exists and how many
// entries it holds.
func (s *MentorRAGService) CollectionStats(ctx context.Context, huddleID string) (exists bool, count int, err error) {
	collection := CollectionName(huddleID)

	exists, err = s.store.HasCollection(ctx, collection)
	if err != nil || !exists {
		return false, 0, err
	}

	result, err := s.store.Get(ctx, collection)
	if err != nil {
		return true, 0, err
	}
	return true, len(result.IDs), nil
}
