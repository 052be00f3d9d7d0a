package models

// Huddle represents one tenant: a university team/group identified by its
// subdomain slug (e.g. "hoosiers-football"). Huddles are created and edited
// by the main AlumniHuddle admin app; this service only reads them.
type Huddle struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	LogoURL         string `json:"logo_url,omitempty"`
	CoverPhotoURL   string `json:"cover_photo_url,omitempty"`
	PrimaryColor    string `json:"primary_color,omitempty"`
	SecondaryColor  string `json:"secondary_color,omitempty"`
	RequireApproval bool   `json:"require_approval"`
	AdminEmail      string `json:"admin_email,omitempty"`
	Description     string `json:"description,omitempty"`
}

// HuddleResponse is the trimmed shape returned by listing endpoints.
type HuddleResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	LogoURL  string `json:"logo_url,omitempty"`
	IsActive bool   `json:"is_active"`
}

// HuddleContextResponse reports which huddle (if any) a request resolved to
// and where the slug came from: "middleware", "subdomain", "header", "none",
// or "disabled".
type HuddleContextResponse struct {
	Huddle *HuddleResponse `json:"huddle"`
	Source string          `json:"source"`
}

// HuddleBrandingResponse carries everything the frontend needs to style
// itself for a huddle.
type HuddleBrandingResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	LogoURL        string `json:"logo_url,omitempty"`
	CoverPhotoURL  string `json:"cover_photo_url,omitempty"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	Description    string `json:"description,omitempty"`
}

// ToResponse converts a Huddle to its listing shape.
func (h *Huddle) ToResponse() HuddleResponse {
	return HuddleResponse{
		ID:       h.ID,
		Name:     h.Name,
		Slug:     h.Slug,
		LogoURL:  h.LogoURL,
		IsActive: true,
	}
}

// ToBranding converts a Huddle to its branding shape.
func (h *Huddle) ToBranding() HuddleBrandingResponse {
	return HuddleBrandingResponse{
		ID:             h.ID,
		Name:           h.Name,
		Slug:           h.Slug,
		LogoURL:        h.LogoURL,
		CoverPhotoURL:  h.CoverPhotoURL,
		PrimaryColor:   h.PrimaryColor,
		SecondaryColor: h.SecondaryColor,
		Description:    h.Description,
	}
}
