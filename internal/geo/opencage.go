package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"carslink-backend/config"
)

// ErrNotConfigured is returned when no OpenCage API key is set.
var ErrNotConfigured = errors.New("geocoding is not configured")

// ErrNoResults is returned when the geocoder finds nothing for a query.
var ErrNoResults = errors.New("no geocoding results")

// Location is a resolved coordinate pair with the formatted address.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Formatted string  `json:"formatted"`
}

// Client resolves free-text addresses through the OpenCage forward geocoder,
// caching results so repeated lookups for the same garage address do not
// burn quota.
type Client struct {
	cfg    config.GeocodingConfig
	client *http.Client
	cache  *cache.Cache
}

// NewClient creates an OpenCage client from config.
func NewClient(cfg config.GeocodingConfig) *Client {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Geocode resolves an address to coordinates, serving repeats from cache.
func (c *Client) Geocode(ctx context.Context, address string) (*Location, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	if cached, found := c.cache.Get(address); found {
		loc := cached.(Location)
		return &loc, nil
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("key", c.cfg.APIKey)
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opencage returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Results []struct {
			Formatted string `json:"formatted"`
			Geometry  struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal geocode response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, ErrNoResults
	}

	loc := Location{
		Latitude:  payload.Results[0].Geometry.Lat,
		Longitude: payload.Results[0].Geometry.Lng,
		Formatted: payload.Results[0].Formatted,
	}
	c.cache.SetDefault(address, loc)
	return &loc, nil
}
