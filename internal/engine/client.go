// Package engine is the HTTP client for the remote scraping engine that
// executes local-business searches as background jobs.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/coldreach/prospector/pkg/models"
)

// Sentinel errors for scraping-engine client failures.
var (
	ErrEngineUnreachable = errors.New("scraping engine unreachable")
	ErrEngineRejected    = errors.New("scraping engine rejected request")
	ErrEngineTimeout     = errors.New("scraping engine timeout")
)

// Session carries the caller's session token. It is passed explicitly on
// every request so a single client serves any number of sessions.
type Session struct {
	Token string
}

// SubmitRequest is the job-creation payload the engine expects.
type SubmitRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Limit    int    `json:"limit"`
	Emails   bool   `json:"extract_emails"`
	Phone    bool   `json:"extract_phone"`
	Website  bool   `json:"extract_website"`
	Reviews  bool   `json:"extract_reviews"`
}

// PollResponse is a single authoritative snapshot of a running job: its
// status, a human-readable progress line, and the full result list so far.
type PollResponse struct {
	Status   string
	Progress string
	Results  []models.ResultRecord
}

// Client is the interface for driving jobs on the scraping engine.
type Client interface {
	Submit(ctx context.Context, sess Session, req SubmitRequest) (string, error)
	Poll(ctx context.Context, sess Session, jobID string) (*PollResponse, error)
	Stop(ctx context.Context, sess Session, jobID string) error
}

// HTTPClient implements Client using the engine's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new scraping-engine HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Submit(ctx context.Context, sess Session, req SubmitRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding submit request: %w", err)
	}

	u := fmt.Sprintf("%s/api/v1/jobs", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	setSession(httpReq, sess)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", rejectionError(resp)
	}

	var submitResp struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return "", fmt.Errorf("decoding submit response: %w", err)
	}
	if submitResp.JobID == "" {
		return "", fmt.Errorf("%w: missing job_id", ErrEngineRejected)
	}

	return submitResp.JobID, nil
}

func (c *HTTPClient) Poll(ctx context.Context, sess Session, jobID string) (*PollResponse, error) {
	u := fmt.Sprintf("%s/api/v1/jobs/%s", c.baseURL, url.PathEscape(jobID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	setSession(httpReq, sess)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, rejectionError(resp)
	}

	var pollResp jobStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&pollResp); err != nil {
		return nil, fmt.Errorf("decoding poll response: %w", err)
	}

	return &PollResponse{
		Status:   pollResp.Status,
		Progress: pollResp.Progress,
		Results:  parseRecords(pollResp.Results),
	}, nil
}

func (c *HTTPClient) Stop(ctx context.Context, sess Session, jobID string) error {
	u := fmt.Sprintf("%s/api/v1/jobs/%s/stop", c.baseURL, url.PathEscape(jobID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	setSession(httpReq, sess)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejectionError(resp)
	}

	return nil
}

func setSession(req *http.Request, sess Session) {
	if sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
}

// rejectionError surfaces the server-provided message when there is one.
func rejectionError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("%w: %s (status %d)", ErrEngineRejected, errResp.Error, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d", ErrEngineRejected, resp.StatusCode)
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrEngineTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrEngineTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrEngineUnreachable, err)
}

// parseRecords normalizes engine result rows into the core model,
// converting placeholder text ("N/A", "None found") into absent fields.
func parseRecords(rows []resultRow) []models.ResultRecord {
	records := make([]models.ResultRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.ResultRecord{
			Name:    models.NormalizeField(row.Name),
			Phone:   models.NormalizeField(row.Phone),
			Website: models.NormalizeField(row.Website),
			Email:   models.NormalizeField(row.Email),
			Rating:  models.NormalizeField(row.Rating),
			Reviews: models.NormalizeField(row.Reviews),
		})
	}
	return records
}

// --- Engine response types ---

type jobStatusResponse struct {
	Status   string      `json:"status"`
	Progress string      `json:"progress"`
	Results  []resultRow `json:"results"`
}

type resultRow struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Email   string `json:"email"`
	Rating  string `json:"rating"`
	Reviews string `json:"reviews"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
