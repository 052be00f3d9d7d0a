package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alumnihuddle/internal/middleware"
	"alumnihuddle/internal/models"
	"alumnihuddle/internal/services"
	"alumnihuddle/internal/vector"
)

const indexAllLockKey = "lock:mentor-index-all"

// MentorHandler handles mentor listing, search and indexing requests
type MentorHandler struct {
	mentors *services.MentorService
	rag     *services.MentorRAGService
	redis   *services.RedisService
}

// NewMentorHandler creates a new mentor handler
func NewMentorHandler(mentors *services.MentorService, rag *services.MentorRAGService, redis *services.RedisService) *MentorHandler {
	return &MentorHandler{mentors: mentors, rag: rag, redis: redis}
}

// SearchRequest is the body of POST /api/v1/mentors/search
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// Search runs a relevance search over the current huddle's mentors
func (h *MentorHandler) Search(c *fiber.Ctx) error {
	huddle := middleware.HuddleFromCtx(c)
	if huddle == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No huddle context found. Access this from a huddle subdomain.",
		})
	}

	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	// Search degrades internally; the only error left is a missing
	// embedding service.
	results, err := h.rag.Search(c.Context(), huddle.ID, req.Query, req.Limit)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Embedding service not available",
		})
	}

	if results == nil {
		results = []models.MentorSearchResult{}
	}

	return c.JSON(fiber.Map{
		"results":     results,
		"query":       req.Query,
		"huddle_id":   huddle.ID,
		"huddle_name": huddle.Name,
	})
}

// List returns mentors in the current huddle without relevance ranking
func (h *MentorHandler) List(c *fiber.Ctx) error {
	huddle := middleware.HuddleFromCtx(c)
	if huddle == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No huddle context found. Access this from a huddle subdomain.",
		})
	}

	skip, _ := strconv.Atoi(c.Query("skip", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	mentors, err := h.mentors.GetByHuddle(huddle.ID, skip, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch mentors",
		})
	}

	if mentors == nil {
		mentors = []models.Mentor{}
	}
	return c.JSON(mentors)
}

// Get returns one mentor's profile. Cross-huddle access is forbidden.
func (h *MentorHandler) Get(c *fiber.Ctx) error {
	huddle := middleware.HuddleFromCtx(c)

	mentor, err := h.mentors.GetByID(c.Params("mentor_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch mentor",
		})
	}
	if mentor == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Mentor not found",
		})
	}

	if huddle != nil && mentor.HuddleID != huddle.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Mentor not accessible from this huddle",
		})
	}

	return c.JSON(mentor)
}

// Stats reports indexing coverage for the current huddle
func (h *MentorHandler) Stats(c *fiber.Ctx) error {
	huddle := middleware.HuddleFromCtx(c)
	if huddle == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No huddle context found.",
		})
	}

	total, err := h.mentors.CountByHuddle(huddle.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count mentors",
		})
	}

	exists, indexed, err := h.rag.CollectionStats(c.Context(), huddle.ID)
	if err != nil {
		log.Printf("⚠️ Failed to read collection stats for huddle %s: %v", huddle.Slug, err)
		exists, indexed = false, 0
	}

	return c.JSON(fiber.Map{
		"huddle_id":         huddle.ID,
		"huddle_name":       huddle.Name,
		"total_mentors":     total,
		"indexed_mentors":   indexed,
		"collection_exists": exists,
	})
}

// Index rebuilds the vector index for the current huddle (admin only)
func (h *MentorHandler) Index(c *fiber.Ctx) error {
	huddle := middleware.HuddleFromCtx(c)
	if huddle == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No huddle context found. Access this from a huddle subdomain.",
		})
	}

	result, err := h.rag.IndexAllForHuddle(c.Context(), huddle.ID)
	if err != nil {
		if errors.Is(err, vector.ErrEmbeddingUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Embedding service not available",
			})
		}
		log.Printf("❌ Mentor indexing failed for huddle %s: %v", huddle.Slug, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Mentor indexing is temporarily unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"indexed":     result.Indexed,
		"failed":      result.Failed,
		"total":       result.Total,
		"huddle_id":   huddle.ID,
		"huddle_name": huddle.Name,
	})
}

// IndexAll rebuilds the vector index for every huddle (admin only). When
// Redis is available a lock guards against concurrent rebuilds across nodes.
func (h *MentorHandler) IndexAll(c *fiber.Ctx) error {
	if h.redis != nil {
		lockValue := uuid.New().String()
		acquired, err := h.redis.AcquireLock(c.Context(), indexAllLockKey, lockValue, 30*time.Minute)
		if err != nil {
			log.Printf("⚠️ Failed to acquire index lock: %v", err)
		} else if !acquired {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A full reindex is already running",
			})
		} else {
			defer func() {
				if _, err := h.redis.ReleaseLock(c.Context(), indexAllLockKey, lockValue); err != nil {
					log.Printf("⚠️ Failed to release index lock: %v", err)
				}
			}()
		}
	}

	results, err := h.rag.IndexAllHuddles(c.Context())
	if err != nil {
		if errors.Is(err, vector.ErrEmbeddingUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Embedding service not available",
			})
		}
		log.Printf("❌ Full mentor reindex failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Mentor indexing is temporarily unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"results": results,
	})
}
