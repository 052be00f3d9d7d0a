package services

import (
	"database/sql"
	"errors"
	"fmt"

	"alumnihuddle/internal/database"
	"alumnihuddle/internal/models"
)

// MentorService reads mentor profiles from the relational store. Only rows
// with mentorship_status = "Willing to mentor" and no delete marker are
// visible.
type MentorService struct {
	db *database.DB
}

// NewMentorService creates a new mentor service
func NewMentorService(db *database.DB) *MentorService {
	return &MentorService{db: db}
}

const mentorColumns = `
	id, huddle_id, full_name, class_year, metro_area,
	COALESCE(current_company, ''), COALESCE(title, ''),
	COALESCE(prior_roles, ''), COALESCE(industry, ''),
	COALESCE(skills_experience, ''),
	COALESCE(linkedin_url, ''), COALESCE(photo_url, '')
`

func scanMentor(row interface{ Scan(...interface{}) error }) (*models.Mentor, error) {
	var m models.Mentor
	err := row.Scan(&m.ID, &m.HuddleID, &m.FullName, &m.ClassYear, &m.MetroArea,
		&m.CurrentCompany, &m.Title,
		&m.PriorRoles, &m.Industry,
		&m.SkillsExperience,
		&m.LinkedInURL, &m.PhotoURL)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByHuddle returns the visible mentors of a huddle ordered by name.
func (s *MentorService) GetByHuddle(huddleID string, offset, limit int) ([]models.Mentor, error) {
	query := `
		SELECT ` + mentorColumns + `
		FROM profiles
		WHERE huddle_id = ? AND mentorship_status = ? AND deleted_at IS NULL
		ORDER BY full_name ASC
		LIMIT ? OFFSET ?
	`
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(query, huddleID, models.MentorStatus, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query mentors: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var mentors []models.Mentor
	for rows.Next() {
		m, err := scanMentor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mentor: %w", err)
		}
		mentors = append(mentors, *m)
	}

	return mentors, rows.Err()
}

// GetByID returns a visible mentor by id, or nil when none matches.
func (s *MentorService) GetByID(mentorID string) (*models.Mentor, error) {
	query := `
		SELECT ` + mentorColumns + `
		FROM profiles
		WHERE id = ? AND mentorship_status = ? AND deleted_at IS NULL
	`

	mentor, err := scanMentor(s.db.QueryRow(query, mentorID, models.MentorStatus))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query mentor: %v", ErrStoreUnavailable, err)
	}
	return mentor, nil
}

// CountByHuddle returns the number of visible mentors in a huddle.
func (s *MentorService) CountByHuddle(huddleID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM profiles
		WHERE huddle_id = ? AND mentorship_status = ? AND deleted_at IS NULL
	`

	var count int
	if err := s.db.QueryRow(query, huddleID, models.MentorStatus).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count mentors: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

// HuddleIDsWithMentors returns the distinct huddle ids that currently have
// at least one visible mentor.
func (s *MentorService) HuddleIDsWithMentors() ([]string, error) {
	query := `
		SELECT DISTINCT huddle_id
		FROM profiles
		WHERE mentorship_status = ? AND deleted_at IS NULL
	`

	rows, err := s.db.Query(query, models.MentorStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query huddle ids: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan huddle id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
