package middleware

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"

	"alumnihuddle/internal/models"
)

func listingBody(ids ...string) []byte {
	entries := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, map[string]interface{}{"id": id, "name": "Model " + id})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"object": "list",
		"data":   entries,
	})
	return body
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		t.Fatalf("Failed to gzip: %v", err)
	}
	gz.Close()
	return buf.Bytes()
}

func parsedIDs(t *testing.T, body []byte) []string {
	t.Helper()
	var payload struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("Failed to parse filtered body: %v", err)
	}
	ids := make([]string, 0, len(payload.Data))
	for _, d := range payload.Data {
		ids = append(ids, d.ID)
	}
	return ids
}

// TestFilterListingPlain verifies only the huddle's model survives
func TestFilterListingPlain(t *testing.T) {
	body := listingBody("alumnihuddle-hoosiers", "claude-base", "alumnihuddle-other")

	filtered, err := FilterListing(body, "", "alumnihuddle-hoosiers")
	if err != nil {
		t.Fatalf("FilterListing failed: %v", err)
	}

	ids := parsedIDs(t, filtered)
	if len(ids) != 1 || ids[0] != "alumnihuddle-hoosiers" {
		t.Errorf("Expected only alumnihuddle-hoosiers, got %v", ids)
	}
}

// TestFilterListingGzip verifies a gzip body is decompressed and filtered
func TestFilterListingGzip(t *testing.T) {
	body := gzipped(t, listingBody("alumnihuddle-hoosiers", "claude-base"))

	filtered, err := FilterListing(body, "gzip", "alumnihuddle-hoosiers")
	if err != nil {
		t.Fatalf("FilterListing failed: %v", err)
	}

	ids := parsedIDs(t, filtered)
	if len(ids) != 1 || ids[0] != "alumnihuddle-hoosiers" {
		t.Errorf("Expected only alumnihuddle-hoosiers, got %v", ids)
	}
}

// TestFilterListingNoMatch verifies an unprovisioned huddle gets an empty
// listing, not an error
func TestFilterListingNoMatch(t *testing.T) {
	body := listingBody("claude-base", "gpt-base")

	filtered, err := FilterListing(body, "", "alumnihuddle-hoosiers")
	if err != nil {
		t.Fatalf("FilterListing failed: %v", err)
	}

	if ids := parsedIDs(t, filtered); len(ids) != 0 {
		t.Errorf("Expected empty listing, got %v", ids)
	}
}

// TestFilterListingPreservesOtherKeys verifies sibling payload keys survive
// filtering
func TestFilterListingPreservesOtherKeys(t *testing.T) {
	body := listingBody("alumnihuddle-hoosiers")

	filtered, err := FilterListing(body, "", "alumnihuddle-hoosiers")
	if err != nil {
		t.Fatalf("FilterListing failed: %v", err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(filtered, &payload); err != nil {
		t.Fatalf("Failed to parse filtered body: %v", err)
	}
	if string(payload["object"]) != `"list"` {
		t.Errorf("Expected object key preserved, got %s", payload["object"])
	}
}

// TestFilterListingErrors covers malformed inputs
func TestFilterListingErrors(t *testing.T) {
	if _, err := FilterListing([]byte("not json"), "", "m"); err == nil {
		t.Error("Expected error for malformed JSON")
	}
	if _, err := FilterListing([]byte("not gzip"), "gzip", "m"); err == nil {
		t.Error("Expected error for malformed gzip")
	}
}

// TestFilterListingNonArrayData verifies a non-array data key is left alone
func TestFilterListingNonArrayData(t *testing.T) {
	body := []byte(`{"data": {"nested": true}}`)

	filtered, err := FilterListing(body, "", "m")
	if err != nil {
		t.Fatalf("FilterListing failed: %v", err)
	}
	if !bytes.Contains(filtered, []byte(`"nested":true`)) {
		t.Errorf("Expected non-array data preserved, got %s", filtered)
	}
}

func filterTestApp(huddle *models.Huddle, respond func(c *fiber.Ctx) error) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if huddle != nil {
			c.Locals(HuddleKey, huddle)
		}
		return c.Next()
	})
	app.Use(ModelFilterMiddleware())
	app.Get("/api/models", respond)
	return app
}

// TestModelFilterMiddleware verifies the listing response is narrowed for
// the request's huddle and headers stay consistent
func TestModelFilterMiddleware(t *testing.T) {
	huddle := &models.Huddle{ID: "h-1", Name: "Indiana Football", Slug: "hoosiers"}
	app := filterTestApp(huddle, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/json")
		return c.Send(listingBody("alumnihuddle-hoosiers", "claude-base"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/models", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	ids := parsedIDs(t, body)
	if len(ids) != 1 || ids[0] != "alumnihuddle-hoosiers" {
		t.Errorf("Expected filtered listing, got %v", ids)
	}

	if cl := resp.Header.Get("Content-Length"); cl != "" && cl != strconv.Itoa(len(body)) {
		t.Errorf("Content-Length %s does not match body length %d", cl, len(body))
	}
	if ce := resp.Header.Get("Content-Encoding"); ce != "" {
		t.Errorf("Expected no Content-Encoding on filtered response, got %s", ce)
	}
}

// TestModelFilterMiddlewareNoHuddle verifies the listing passes through
// untouched without a huddle
func TestModelFilterMiddlewareNoHuddle(t *testing.T) {
	app := filterTestApp(nil, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/json")
		return c.Send(listingBody("alumnihuddle-hoosiers", "claude-base"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/models", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if ids := parsedIDs(t, body); len(ids) != 2 {
		t.Errorf("Expected unfiltered listing, got %v", ids)
	}
}

// TestModelFilterMiddlewareFailOpen verifies a malformed upstream body is
// returned as-is instead of an error
func TestModelFilterMiddlewareFailOpen(t *testing.T) {
	huddle := &models.Huddle{ID: "h-1", Name: "Indiana Football", Slug: "hoosiers"}
	app := filterTestApp(huddle, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/json")
		return c.SendString("{broken json")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/models", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200 on fail-open, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "{broken json" {
		t.Errorf("Expected original body, got %q", body)
	}
}

// TestModelFilterMiddlewareSkipsOtherPaths verifies only the listing paths
// are intercepted
func TestModelFilterMiddlewareSkipsOtherPaths(t *testing.T) {
	huddle := &models.Huddle{ID: "h-1", Name: "Indiana Football", Slug: "hoosiers"}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(HuddleKey, huddle)
		return c.Next()
	})
	app.Use(ModelFilterMiddleware())
	app.Get("/api/other", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/json")
		return c.Send(listingBody("alumnihuddle-hoosiers", "claude-base"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/other", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if ids := parsedIDs(t, body); len(ids) != 2 {
		t.Errorf("Expected unfiltered body on non-listing path, got %v", ids)
	}
}
