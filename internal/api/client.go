package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studiowebux/ytsum/internal/types"
)

const (
	// SummarizePath is the summarize endpoint, relative to the API base
	SummarizePath = "/summarize"

	// maxResponseBytes caps the response body read from the backend
	maxResponseBytes int64 = 8 * 1024 * 1024
)

// Summary is the decoded result of a successful summarize call
type Summary struct {
	Text      string
	Warning   string
	Source    string
	Status    int
	RequestID string
	Duration  time.Duration
}

// Client talks to the summarization backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the backend at baseURL (API_BASE)
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("api base URL is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client timeout: deadlines come from the caller's context
		httpClient: &http.Client{Transport: http.DefaultTransport},
		userAgent:  "ytsum",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API base
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Summarize submits videoURL and waits for exactly one response.
// Every failure is returned as an *Error.
func (c *Client) Summarize(ctx context.Context, videoURL string) (*Summary, error) {
	startTime := time.Now()
	requestID := uuid.NewString()

	payload, err := json.Marshal(types.SummarizeRequest{URL: videoURL})
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: GenericMessage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SummarizePath, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: describeTransportError(err.Error()), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("summarize request", "request_id", requestID, "url", videoURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := transportError(err)
		c.logger.Warn("summarize transport failure", "request_id", requestID, "kind", apiErr.Kind.String(), "error", err)
		return nil, apiErr
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, maxResponseBytes)
	if err != nil {
		if ctx.Err() != nil {
			return nil, transportError(ctx.Err())
		}
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: describeTransportError(err.Error()), Err: err}
	}

	duration := time.Since(startTime)
	c.logger.Debug("summarize response", "request_id", requestID, "status", resp.StatusCode, "bytes", len(body), "duration_ms", duration.Milliseconds())

	if !IsSuccessStatus(resp.StatusCode) {
		return nil, &Error{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: ErrorDetail(body),
			Err:     fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	return decodeSummary(body, resp.StatusCode, requestID, duration)
}

// decodeSummary parses a 2xx body. A missing, non-string or blank summary is malformed.
func decodeSummary(body []byte, status int, requestID string, duration time.Duration) (*Summary, error) {
	var data types.SummaryResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &Error{
			Kind:    KindMalformed,
			Status:  status,
			Message: "Unexpected response from server: " + err.Error(),
			Err:     err,
		}
	}
	if data.Summary == nil || strings.TrimSpace(*data.Summary) == "" {
		return nil, &Error{
			Kind:    KindMalformed,
			Status:  status,
			Message: EmptySummaryMessage,
			Err:     fmt.Errorf("response has no summary"),
		}
	}

	return &Summary{
		Text:      *data.Summary,
		Warning:   data.Warning,
		Source:    data.Source,
		Status:    status,
		RequestID: requestID,
		Duration:  duration,
	}, nil
}

// ErrorDetail extracts the human-readable message from an error body.
// It falls back to GenericMessage when the body is absent, unparsable or has no detail.
func ErrorDetail(body []byte) string {
	var errResp types.ErrorResponse
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &errResp) != nil || len(errResp.Detail) == 0 {
		return GenericMessage
	}

	var detail string
	if err := json.Unmarshal(errResp.Detail, &detail); err == nil {
		if strings.TrimSpace(detail) == "" {
			return GenericMessage
		}
		return detail
	}

	// Validation errors: [{"loc": [...], "msg": "...", "type": "..."}]
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(errResp.Detail, &items); err == nil {
		var msgs []string
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return GenericMessage
}

// readLimited reads at most limit bytes and fails if the body is larger
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
