// Package leads is the HTTP client for the lead-management service that
// receives imported prospector results.
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coldreach/prospector/internal/engine"
	"github.com/coldreach/prospector/pkg/models"
)

// Sentinel errors for lead-management client failures.
var (
	ErrLeadsUnreachable = errors.New("lead service unreachable")
	ErrLeadsRejected    = errors.New("lead service rejected import")
)

// ImportResult reports how many records the lead service accepted. Skips
// come from its own de-duplication, which is opaque to the prospector.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Client is the interface for forwarding results to the lead service.
type Client interface {
	Import(ctx context.Context, sess engine.Session, records []models.ResultRecord) (*ImportResult, error)
}

// HTTPClient implements Client using the lead service's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new lead-management HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Import(ctx context.Context, sess engine.Session, records []models.ResultRecord) (*ImportResult, error) {
	body, err := json.Marshal(struct {
		Results []models.ResultRecord `json:"results"`
	}{Results: records})
	if err != nil {
		return nil, fmt.Errorf("encoding import request: %w", err)
	}

	u := fmt.Sprintf("%s/api/v1/leads/import", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if sess.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLeadsUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%w: %s (status %d)", ErrLeadsRejected, errResp.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d", ErrLeadsRejected, resp.StatusCode)
	}

	var result ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding import response: %w", err)
	}

	return &result, nil
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
