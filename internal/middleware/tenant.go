package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/config"
	"alumnihuddle/internal/models"
	"alumnihuddle/internal/services"
)

// HuddleKey is the single request-local key carrying the resolved huddle.
const HuddleKey = "huddle"

// Subdomains that are never huddle slugs.
var reservedSubdomains = map[string]bool{
	"www":       true,
	"api":       true,
	"admin":     true,
	"app":       true,
	"localhost": true,
}

// ExtractSubdomain pulls the huddle slug out of a request host.
//
//	hoosiers-football.alumnihuddle.com -> "hoosiers-football"
//	www.alumnihuddle.com               -> "" (reserved)
//	alumnihuddle.com                   -> "" (no subdomain)
//	localhost:3000                     -> "" (development)
func ExtractSubdomain(host, baseDomain string) string {
	if host == "" {
		return ""
	}

	// Strip port
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}

	if host == "localhost" || host == "127.0.0.1" {
		return ""
	}

	if !strings.HasSuffix(host, baseDomain) {
		return ""
	}

	subdomainPart := strings.TrimRight(host[:len(host)-len(baseDomain)], ".")
	if subdomainPart == "" {
		return ""
	}

	// Nested subdomains: skip reserved labels from the left.
	for _, part := range strings.Split(subdomainPart, ".") {
		if !reservedSubdomains[strings.ToLower(part)] {
			return strings.ToLower(part)
		}
	}

	return ""
}

// TenantMiddleware resolves the huddle for each request and stores it under
// HuddleKey. Resolution order: host subdomain, then the X-Tenant-Subdomain
// header, then the configured default slug. Lookup failures never block the
// request; the huddle is simply absent.
func TenantMiddleware(cfg *config.Config, cache *services.HuddleCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.EnableMultiTenancy {
			return c.Next()
		}

		slug := ExtractSubdomain(c.Hostname(), cfg.BaseDomain)

		// Header override for local development
		if slug == "" {
			slug = strings.ToLower(strings.TrimSpace(c.Get("X-Tenant-Subdomain")))
		}

		if slug == "" && cfg.DefaultTenantSlug != "" {
			slug = cfg.DefaultTenantSlug
		}

		if slug != "" {
			huddle, err := cache.Get(slug)
			switch {
			case errors.Is(err, services.ErrStoreUnavailable):
				log.Printf("⚠️ Huddle lookup unavailable for slug %s: %v", slug, err)
			case err != nil:
				log.Printf("❌ Error looking up huddle %s: %v", slug, err)
			case huddle != nil:
				c.Locals(HuddleKey, huddle)
			default:
				log.Printf("⚠️ Unknown huddle slug: %s", slug)
			}
		}

		return c.Next()
	}
}

// HuddleFromCtx returns the huddle resolved for this request, or nil.
func HuddleFromCtx(c *fiber.Ctx) *models.Huddle {
	huddle, _ := c.Locals(HuddleKey).(*models.Huddle)
	return huddle
}

// RequireHuddle rejects requests that did not resolve to a huddle.
func RequireHuddle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if HuddleFromCtx(c) == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "This endpoint requires a valid organization subdomain.",
			})
		}
		return c.Next()
	}
}
