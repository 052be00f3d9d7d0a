package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MentorStatus is the profile status that makes an alum visible as a mentor.
// Profiles with any other mentorship_status are invisible to this service.
const MentorStatus = "Willing to mentor"

// Mentor is an alumni profile eligible for mentorship, read from the
// profiles table. The main AlumniHuddle app owns these rows; this service
// never writes them.
type Mentor struct {
	ID               string `json:"id"`
	HuddleID         string `json:"huddle_id"`
	FullName         string `json:"full_name"`
	ClassYear        int    `json:"class_year"`
	MetroArea        string `json:"metro_area"`
	CurrentCompany   string `json:"current_company,omitempty"`
	Title            string `json:"title,omitempty"`
	PriorRoles       string `json:"prior_roles,omitempty"`
	Industry         string `json:"industry,omitempty"`
	SkillsExperience string `json:"skills_experience,omitempty"`
	LinkedInURL      string `json:"linkedin_url,omitempty"`
	PhotoURL         string `json:"photo_url,omitempty"`
}

// ToDocument renders the mentor profile as the text document that gets
// embedded for search. The field order is fixed so re-indexing the same
// profile produces the same document.
func (m *Mentor) ToDocument() string {
	parts := []string{
		fmt.Sprintf("Name: %s", m.FullName),
		fmt.Sprintf("Class Year: %d", m.ClassYear),
		fmt.Sprintf("Location: %s", m.MetroArea),
	}

	switch {
	case m.Title != "" && m.CurrentCompany != "":
		parts = append(parts, fmt.Sprintf("Current Role: %s at %s", m.Title, m.CurrentCompany))
	case m.Title != "":
		parts = append(parts, fmt.Sprintf("Current Role: %s", m.Title))
	case m.CurrentCompany != "":
		parts = append(parts, fmt.Sprintf("Current Company: %s", m.CurrentCompany))
	}

	if m.Industry != "" {
		parts = append(parts, fmt.Sprintf("Industry: %s", m.Industry))
	}
	if m.SkillsExperience != "" {
		parts = append(parts, fmt.Sprintf("Skills & Experience: %s", m.SkillsExperience))
	}
	if m.PriorRoles != "" {
		parts = append(parts, fmt.Sprintf("Prior Roles: %s", m.PriorRoles))
	}

	return strings.Join(parts, "\n")
}

// Metadata returns the per-entry metadata stored next to the vector, enough
// to re-display or re-filter a hit without a database lookup.
func (m *Mentor) Metadata() map[string]string {
	return map[string]string{
		"mentor_id":  m.ID,
		"huddle_id":  m.HuddleID,
		"full_name":  m.FullName,
		"title":      m.Title,
		"company":    m.CurrentCompany,
		"industry":   m.Industry,
		"class_year": strconv.Itoa(m.ClassYear),
	}
}

// MentorSearchResult is one ranked hit from a mentor search. Score is the
// raw distance from the vector index - lower is more relevant - and is not
// comparable across collections built with different embedding functions.
type MentorSearchResult struct {
	Mentor       Mentor  `json:"mentor"`
	Score        float64 `json:"relevance_score"`
	DocumentText string  `json:"document_text,omitempty"`
}

// IndexResult reports the outcome of a batch indexing run.
type IndexResult struct {
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}
