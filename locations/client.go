package locations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = 24 * time.Hour

// Client resolves legacy numeric location ids to durable UUIDs via the locations
// lookup service. Results are cached in redis since the mapping is immutable and the
// backfill job re-resolves the same ids repeatedly.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Cache      *redis.Client
}

// NewClient creates a lookup client; cache may be nil to disable caching
func NewClient(baseURL string, cache *redis.Client) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Cache:      cache,
	}
}

// LocationUUID resolves a legacy location id to its UUID. A 404 from the lookup
// service resolves to empty ("unknown"), not an error; any other failure is fatal.
func (c *Client) LocationUUID(ctx context.Context, locationID int64) (string, error) {
	cacheKey := fmt.Sprintf("location:%d", locationID)
	if c.Cache != nil {
		if cached, err := c.Cache.Get(ctx, cacheKey).Result(); err == nil {
			return cached, nil
		}
	}

	url := fmt.Sprintf("%s/locations/nomis/%d", c.BaseURL, locationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create location request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("location lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		zap.S().Debugf("location %d not found in lookup service", locationID)
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("location lookup returned status %d for id %d", resp.StatusCode, locationID)
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode location response: %w", err)
	}

	if c.Cache != nil {
		if err := c.Cache.Set(ctx, cacheKey, body.ID, cacheTTL).Err(); err != nil {
			zap.S().Warnf("failed to cache location %d: %v", locationID, err)
		}
	}
	return body.ID, nil
}

// PrisonerName resolves a prisoner number to a display name. A 404 resolves to empty.
func (c *Client) PrisonerName(ctx context.Context, prisonerNumber string) (string, error) {
	url := fmt.Sprintf("%s/prisoners/%s", c.BaseURL, prisonerNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create prisoner request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("prisoner lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("prisoner lookup returned status %d for %s", resp.StatusCode, prisonerNumber)
	}

	var body struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode prisoner response: %w", err)
	}
	return fmt.Sprintf("%s %s", body.FirstName, body.LastName), nil
}
