package middleware

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/services"
)

// FilterListing rewrites a model listing body so only the huddle-owned model
// remains. The body may be gzip-compressed; the returned body never is. The
// top-level "data" array is filtered by model id; everything else in the
// payload is preserved.
func FilterListing(body []byte, contentEncoding, modelID string) ([]byte, error) {
	if contentEncoding == "gzip" {
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		defer gz.Close()

		body, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress body: %w", err)
		}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse model listing: %w", err)
	}

	raw, ok := payload["data"]
	if !ok {
		return json.Marshal(payload)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		// "data" exists but is not an array; leave it alone.
		return json.Marshal(payload)
	}

	filtered := make([]json.RawMessage, 0, 1)
	for _, entry := range entries {
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(entry, &probe); err != nil {
			continue
		}
		if probe.ID == modelID {
			filtered = append(filtered, entry)
		}
	}

	filteredJSON, err := json.Marshal(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filtered models: %w", err)
	}
	payload["data"] = filteredJSON

	return json.Marshal(payload)
}

func isModelListingPath(path string) bool {
	return path == "/api/models" || path == "/api/v1/models"
}

// ModelFilterMiddleware narrows model listing responses to the single model
// owned by the request's huddle. Runs after the handler; any failure leaves
// the original response untouched so the listing never breaks.
func ModelFilterMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isModelListingPath(c.Path()) {
			return c.Next()
		}

		if err := c.Next(); err != nil {
			return err
		}

		huddle := HuddleFromCtx(c)
		if huddle == nil {
			services.RecordModelFilter("no_huddle")
			return nil
		}

		contentType := string(c.Response().Header.ContentType())
		if !strings.Contains(contentType, "application/json") {
			return nil
		}

		contentEncoding := string(c.Response().Header.Peek(fiber.HeaderContentEncoding))

		filtered, err := FilterListing(c.Response().Body(), contentEncoding, services.ModelIDForSlug(huddle.Slug))
		if err != nil {
			log.Printf("⚠️ Model filter failed for huddle %s: %v", huddle.Slug, err)
			services.RecordModelFilter("error")
			// Fail open, but the stored body is already uncompressed as far
			// as fiber is concerned; just drop the stale length header.
			c.Response().Header.Del(fiber.HeaderContentLength)
			return nil
		}

		c.Response().Header.Del(fiber.HeaderContentEncoding)
		c.Response().SetBody(filtered)
		c.Response().Header.SetContentLength(len(filtered))
		services.RecordModelFilter("filtered")
		return nil
	}
}
