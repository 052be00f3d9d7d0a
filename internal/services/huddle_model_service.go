package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"alumnihuddle/internal/database"
	"alumnihuddle/internal/models"
)

// HuddleModelService provisions one chat model row per huddle so the
// upstream model listing has an entry the filter middleware can keep.
type HuddleModelService struct {
	db          *database.DB
	huddles     *HuddleService
	baseModelID string
}

// NewHuddleModelService creates a huddle model provisioning service
func NewHuddleModelService(db *database.DB, huddles *HuddleService, baseModelID string) *HuddleModelService {
	return &HuddleModelService{
		db:          db,
		huddles:     huddles,
		baseModelID: baseModelID,
	}
}

// ModelIDForSlug returns the model id owned by the huddle with this slug.
func ModelIDForSlug(slug string) string {
	return "alumnihuddle-" + slug
}

// EnsureHuddleModel creates or refreshes the chat model row for a huddle.
// Idempotent: safe to call on every boot.
func (s *HuddleModelService) EnsureHuddleModel(huddle *models.Huddle) error {
	modelID := ModelIDForSlug(huddle.Slug)
	name := huddle.Name + " Mentor Coach"

	meta := models.ModelMeta{
		ProfileImageURL: huddle.LogoURL,
		Description:     fmt.Sprintf("Mentor matching assistant for %s alumni.", huddle.Name),
		SuggestionPrompts: []models.SuggestionPrompt{
			{Title: []string{"Find a mentor"}, Content: "Help me find a mentor who works in product management."},
			{Title: []string{"Career pivot"}, Content: "I want to move from consulting into tech. Who should I talk to?"},
			{Title: []string{"Industry intro"}, Content: "Which alumni work in healthcare and are open to a quick chat?"},
		},
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode model meta for huddle %s: %w", huddle.ID, err)
	}

	query := `
		INSERT INTO models (id, base_model_id, name, meta, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			base_model_id = VALUES(base_model_id),
			name = VALUES(name),
			meta = VALUES(meta),
			is_active = 1,
			updated_at = NOW()`

	if _, err := s.db.Exec(query, modelID, s.baseModelID, name, string(metaJSON)); err != nil {
		return fmt.Errorf("failed to upsert model %s: %w", modelID, err)
	}

	return nil
}

// EnsureAllHuddleModels provisions model rows for every active huddle.
// Failures are logged per huddle so one bad row cannot block boot.
func (s *HuddleModelService) EnsureAllHuddleModels() error {
	huddles, err := s.huddles.GetAll(false, 0, 1000)
	if err != nil {
		return fmt.Errorf("failed to list huddles for model provisioning: %w", err)
	}

	provisioned := 0
	for i := range huddles {
		if err := s.EnsureHuddleModel(&huddles[i]); err != nil {
			log.Printf("⚠️ Failed to provision model for huddle %s (%s): %v", huddles[i].Slug, huddles[i].ID, err)
			continue
		}
		provisioned++
	}

	log.Printf("✅ Provisioned %d/%d huddle models", provisioned, len(huddles))
	return nil
}

// GetActiveModels returns the active model rows, newest first.
func (s *HuddleModelService) GetActiveModels() ([]models.Model, error) {
	query := `
		SELECT id, COALESCE(base_model_id, ''), COALESCE(name, ''), COALESCE(meta, '{}'), is_active, updated_at
		FROM models
		WHERE is_active = 1
		ORDER BY updated_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query models: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var result []models.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}

	return result, rows.Err()
}

func scanModel(row interface{ Scan(...interface{}) error }) (*models.Model, error) {
	var m models.Model
	var metaJSON string
	var updatedAt sql.NullTime

	if err := row.Scan(&m.ID, &m.BaseModelID, &m.Name, &metaJSON, &m.IsActive, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metaJSON), &m.Meta); err != nil {
		// Tolerate malformed meta rather than hide the model.
		m.Meta = models.ModelMeta{}
	}
	if updatedAt.Valid {
		m.UpdatedAt = updatedAt.Time
	} else {
		m.UpdatedAt = time.Time{}
	}

	return &m, nil
}
