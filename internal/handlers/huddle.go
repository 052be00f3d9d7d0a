package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/config"
	"alumnihuddle/internal/middleware"
	"alumnihuddle/internal/models"
	"alumnihuddle/internal/services"
)

// HuddleHandler handles huddle context, branding and listing requests
type HuddleHandler struct {
	cfg     *config.Config
	huddles *services.HuddleService
	cache   *services.HuddleCache
	redis   *services.RedisService
}

// NewHuddleHandler creates a new huddle handler. redis may be nil, in which
// case invalidations stay local to this node.
func NewHuddleHandler(cfg *config.Config, huddles *services.HuddleService, cache *services.HuddleCache, redis *services.RedisService) *HuddleHandler {
	return &HuddleHandler{cfg: cfg, huddles: huddles, cache: cache, redis: redis}
}

// Context reports which huddle the request resolved to and how. Useful for
// debugging subdomain detection and for the frontend to know the active
// huddle.
func (h *HuddleHandler) Context(c *fiber.Ctx) error {
	if !h.cfg.EnableMultiTenancy {
		return c.JSON(models.HuddleContextResponse{Huddle: nil, Source: "disabled"})
	}

	if huddle := middleware.HuddleFromCtx(c); huddle != nil {
		resp := huddle.ToResponse()
		return c.JSON(models.HuddleContextResponse{Huddle: &resp, Source: "middleware"})
	}

	// The middleware found nothing; report where a slug would have come from.
	slug := middleware.ExtractSubdomain(c.Hostname(), h.cfg.BaseDomain)
	source := "subdomain"
	if slug == "" {
		slug = strings.ToLower(strings.TrimSpace(c.Get("X-Tenant-Subdomain")))
		if slug != "" {
			source = "header"
		} else {
			source = "none"
		}
	}

	if slug != "" {
		huddle, err := h.cache.Get(slug)
		if err == nil && huddle != nil {
			resp := huddle.ToResponse()
			return c.JSON(models.HuddleContextResponse{Huddle: &resp, Source: source})
		}
	}

	return c.JSON(models.HuddleContextResponse{Huddle: nil, Source: source})
}

// Branding returns logo, colors and description for the current huddle so
// the frontend can style itself. Public, no auth.
func (h *HuddleHandler) Branding(c *fiber.Ctx) error {
	huddle := middleware.HuddleFromCtx(c)
	if huddle == nil {
		return c.JSON(nil)
	}
	return c.JSON(huddle.ToBranding())
}

// BrandingCSS renders a small stylesheet carrying the huddle theme colors.
func (h *HuddleHandler) BrandingCSS(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/css")

	huddle := middleware.HuddleFromCtx(c)
	if huddle == nil || huddle.PrimaryColor == "" {
		return c.SendString("/* No huddle branding */")
	}

	primary := huddle.PrimaryColor
	secondary := huddle.SecondaryColor
	if secondary == "" {
		secondary = "#000000"
	}

	css := fmt.Sprintf(`
/* AlumniHuddle Dynamic Branding CSS for %s */
/* Minimal branding - keeps header styled but uses black text throughout */
:root {
    --huddle-primary: %s;
    --huddle-secondary: %s;
}

/* Primary action buttons only */
button.bg-black {
    background-color: %s !important;
}

/* Send button / primary CTA buttons */
button[type="submit"].bg-black,
.chat-input button.bg-black {
    background-color: %s !important;
}
`, huddle.Name, primary, secondary, primary, primary)

	return c.SendString(css)
}

// List returns all huddles (admin only)
func (h *HuddleHandler) List(c *fiber.Ctx) error {
	skip, _ := strconv.Atoi(c.Query("skip", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	huddles, err := h.huddles.GetAll(false, skip, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch huddles",
		})
	}

	responses := make([]models.HuddleResponse, 0, len(huddles))
	for i := range huddles {
		responses = append(responses, huddles[i].ToResponse())
	}

	return c.JSON(responses)
}

// InvalidateRequest is the body of POST /api/v1/huddles/invalidate
type InvalidateRequest struct {
	Slug string `json:"slug"`
}

// Invalidate evicts a slug from the resolution cache so the next request
// re-reads the directory. With Redis available the eviction is broadcast to
// every node. Admin only, used after a huddle is edited.
func (h *HuddleHandler) Invalidate(c *fiber.Ctx) error {
	var req InvalidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Slug is required",
		})
	}

	h.cache.Invalidate(slug)

	if h.redis != nil {
		if err := h.redis.PublishInvalidation(c.Context(), slug); err != nil {
			log.Printf("⚠️ Failed to broadcast invalidation for %s: %v", slug, err)
		}
	}

	return c.JSON(fiber.Map{
		"status": "invalidated",
		"slug":   slug,
	})
}

// Get returns huddle details by id (admin only)
func (h *HuddleHandler) Get(c *fiber.Ctx) error {
	huddle, err := h.huddles.GetByID(c.Params("huddle_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch huddle",
		})
	}
	if huddle == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Huddle not found",
		})
	}

	return c.JSON(huddle)
}
