package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/config"
	"alumnihuddle/internal/models"
	"alumnihuddle/internal/services"
)

// TestExtractSubdomain covers the slug extraction rules
func TestExtractSubdomain(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"huddle subdomain", "hoosiers-football.alumnihuddle.com", "hoosiers-football"},
		{"reserved subdomain", "www.alumnihuddle.com", ""},
		{"bare base domain", "alumnihuddle.com", ""},
		{"localhost with port", "localhost:3000", ""},
		{"loopback", "127.0.0.1", ""},
		{"subdomain with port", "hoosiers.alumnihuddle.com:443", "hoosiers"},
		{"uppercase slug", "HOOSIERS.alumnihuddle.com", "hoosiers"},
		{"nested reserved prefix", "www.hoosiers.alumnihuddle.com", "hoosiers"},
		{"all reserved labels", "www.api.alumnihuddle.com", ""},
		{"foreign domain", "hoosiers.example.com", ""},
		{"empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSubdomain(tt.host, "alumnihuddle.com"); got != tt.want {
				t.Errorf("ExtractSubdomain(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

type scriptedDirectory struct {
	huddles map[string]*models.Huddle
	err     error
}

func (s *scriptedDirectory) GetBySlug(slug string) (*models.Huddle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.huddles[slug], nil
}

func tenantTestApp(cfg *config.Config, dir *scriptedDirectory) *fiber.App {
	cache := services.NewHuddleCache(dir, 5*time.Minute, nil)

	app := fiber.New()
	app.Use(TenantMiddleware(cfg, cache))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		huddle := HuddleFromCtx(c)
		if huddle == nil {
			return c.JSON(fiber.Map{"slug": ""})
		}
		return c.JSON(fiber.Map{"slug": huddle.Slug})
	})
	app.Get("/guarded", RequireHuddle(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func resolvedSlug(t *testing.T, app *fiber.App, host, header string) string {
	t.Helper()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Host = host
	if header != "" {
		req.Header.Set("X-Tenant-Subdomain", header)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var out struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return out.Slug
}

// TestTenantMiddlewareResolution covers host, header and default slug
// resolution order
func TestTenantMiddlewareResolution(t *testing.T) {
	dir := &scriptedDirectory{huddles: map[string]*models.Huddle{
		"hoosiers": {ID: "h-1", Name: "Indiana Football", Slug: "hoosiers"},
		"devslug":  {ID: "h-2", Name: "Dev Huddle", Slug: "devslug"},
	}}

	cfg := &config.Config{
		BaseDomain:         "alumnihuddle.com",
		EnableMultiTenancy: true,
	}
	app := tenantTestApp(cfg, dir)

	if slug := resolvedSlug(t, app, "hoosiers.alumnihuddle.com", ""); slug != "hoosiers" {
		t.Errorf("Subdomain resolution: expected hoosiers, got %q", slug)
	}

	if slug := resolvedSlug(t, app, "localhost:3000", "devslug"); slug != "devslug" {
		t.Errorf("Header resolution: expected devslug, got %q", slug)
	}

	if slug := resolvedSlug(t, app, "localhost:3000", ""); slug != "" {
		t.Errorf("No slug source: expected empty, got %q", slug)
	}

	if slug := resolvedSlug(t, app, "unknown.alumnihuddle.com", ""); slug != "" {
		t.Errorf("Unknown slug: expected empty, got %q", slug)
	}
}

// TestTenantMiddlewareDefaultSlug verifies the configured fallback slug is
// used when the host and header give nothing
func TestTenantMiddlewareDefaultSlug(t *testing.T) {
	dir := &scriptedDirectory{huddles: map[string]*models.Huddle{
		"default-huddle": {ID: "h-3", Name: "Default", Slug: "default-huddle"},
	}}

	cfg := &config.Config{
		BaseDomain:         "alumnihuddle.com",
		EnableMultiTenancy: true,
		DefaultTenantSlug:  "default-huddle",
	}
	app := tenantTestApp(cfg, dir)

	if slug := resolvedSlug(t, app, "localhost:3000", ""); slug != "default-huddle" {
		t.Errorf("Expected default-huddle, got %q", slug)
	}
}

// TestTenantMiddlewareDisabled verifies no resolution happens when
// multi-tenancy is off
func TestTenantMiddlewareDisabled(t *testing.T) {
	dir := &scriptedDirectory{huddles: map[string]*models.Huddle{
		"hoosiers": {ID: "h-1", Name: "Indiana Football", Slug: "hoosiers"},
	}}

	cfg := &config.Config{
		BaseDomain:         "alumnihuddle.com",
		EnableMultiTenancy: false,
	}
	app := tenantTestApp(cfg, dir)

	if slug := resolvedSlug(t, app, "hoosiers.alumnihuddle.com", ""); slug != "" {
		t.Errorf("Expected no resolution when disabled, got %q", slug)
	}
}

// TestTenantMiddlewareFailsOpen verifies a directory outage does not block
// the request
func TestTenantMiddlewareFailsOpen(t *testing.T) {
	dir := &scriptedDirectory{err: errors.New("connection refused")}
	cfg := &config.Config{
		BaseDomain:         "alumnihuddle.com",
		EnableMultiTenancy: true,
	}
	app := tenantTestApp(cfg, dir)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Host = "hoosiers.alumnihuddle.com"

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200 despite directory outage, got %d", resp.StatusCode)
	}
}

// TestRequireHuddle verifies the guard rejects huddle-less requests
func TestRequireHuddle(t *testing.T) {
	dir := &scriptedDirectory{huddles: map[string]*models.Huddle{
		"hoosiers": {ID: "h-1", Name: "Indiana Football", Slug: "hoosiers"},
	}}
	cfg := &config.Config{
		BaseDomain:         "alumnihuddle.com",
		EnableMultiTenancy: true,
	}
	app := tenantTestApp(cfg, dir)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Host = "alumnihuddle.com"
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 without huddle, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/guarded", nil)
	req.Host = "hoosiers.alumnihuddle.com"
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200 with huddle, got %d", resp.StatusCode)
	}
}
