package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/studiowebux/ytsum/internal/types"
)

const healthTimeout = 5 * time.Second

// HealthResult is the outcome of a backend health probe
type HealthResult struct {
	OK      bool
	Status  string
	Message string
	Latency time.Duration
}

// Health probes GET {API_BASE}/
func (c *Client) Health(ctx context.Context) (*HealthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach backend: %w", transportError(err))
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var health types.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &HealthResult{
		OK:      health.Status == "ok",
		Status:  health.Status,
		Message: health.Message,
		Latency: latency,
	}, nil
}
