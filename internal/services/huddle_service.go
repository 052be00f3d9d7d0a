package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"alumnihuddle/internal/database"
	"alumnihuddle/internal/models"
)

// HuddleService reads huddles from the relational store. Rows with a
// deleted_at marker are invisible through every method.
type HuddleService struct {
	db *database.DB
}

// NewHuddleService creates a new huddle service
func NewHuddleService(db *database.DB) *HuddleService {
	return &HuddleService{db: db}
}

const huddleColumns = `
	id, name, slug,
	COALESCE(logo_url, ''), COALESCE(cover_photo_url, ''),
	COALESCE(primary_color, ''), COALESCE(secondary_color, ''),
	COALESCE(require_approval, 0),
	COALESCE(admin_email, ''), COALESCE(description, '')
`

func scanHuddle(row interface{ Scan(...interface{}) error }) (*models.Huddle, error) {
	var h models.Huddle
	err := row.Scan(&h.ID, &h.Name, &h.Slug,
		&h.LogoURL, &h.CoverPhotoURL,
		&h.PrimaryColor, &h.SecondaryColor,
		&h.RequireApproval,
		&h.AdminEmail, &h.Description)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetBySlug returns the huddle for a subdomain slug, or nil when no live
// huddle has that slug. The slug comparison is case-insensitive.
func (s *HuddleService) GetBySlug(slug string) (*models.Huddle, error) {
	query := `SELECT ` + huddleColumns + ` FROM huddles WHERE slug = ? AND deleted_at IS NULL`

	huddle, err := scanHuddle(s.db.QueryRow(query, strings.ToLower(slug)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query huddle by slug: %v", ErrStoreUnavailable, err)
	}
	return huddle, nil
}

// GetByID returns the huddle for an id, or nil when no live huddle has it.
func (s *HuddleService) GetByID(id string) (*models.Huddle, error) {
	query := `SELECT ` + huddleColumns + ` FROM huddles WHERE id = ? AND deleted_at IS NULL`

	huddle, err := scanHuddle(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query huddle by id: %v", ErrStoreUnavailable, err)
	}
	return huddle, nil
}

// GetAll returns huddles ordered by name. Soft-deleted rows are included
// only when includeDeleted is set.
func (s *HuddleService) GetAll(includeDeleted bool, offset, limit int) ([]models.Huddle, error) {
	query := `SELECT ` + huddleColumns + ` FROM huddles`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY name ASC LIMIT ? OFFSET ?`

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query huddles: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var huddles []models.Huddle
	for rows.Next() {
		h, err := scanHuddle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan huddle: %w", err)
		}
		huddles = append(huddles, *h)
	}

	return huddles, rows.Err()
}
