package remote

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
)

// DefaultURL is the API endpoint used when none is configured.
const DefaultURL = "https://quantumexperience.ng.bluemix.net/api"

// Client is an HTTP JSON Backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Backend = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for the API at baseURL, authenticating with
// token. An empty baseURL selects DefaultURL.
func NewClient(token, baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API endpoint in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type submitRequest struct {
	Qasms      []qasmEntry `json:"qasms"`
	Shots      int         `json:"shots"`
	MaxCredits int         `json:"maxCredits"`
	Backend    struct {
		Name string `json:"name"`
	} `json:"backend"`
}

type qasmEntry struct {
	Qasm string `json:"qasm"`
}

type submitResponse struct {
	ID    string          `json:"id"`
	Error json.RawMessage `json:"error,omitempty"`
}

// SubmitBatch implements Backend.
func (c *Client) SubmitBatch(ctx context.Context, batch Batch) (string, error) {
	payload := submitRequest{Shots: batch.Shots, MaxCredits: batch.MaxCredits}
	payload.Backend.Name = batch.Device
	for _, src := range batch.Qasms {
		payload.Qasms = append(payload.Qasms, qasmEntry{Qasm: src})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}

	var resp submitResponse
	if err := c.do(ctx, http.MethodPost, "/Jobs", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		return "", &SubmissionError{Device: batch.Device, Message: errorMessage(resp.Error)}
	}
	if resp.ID == "" {
		return "", &SubmissionError{Device: batch.Device, Message: "response carried no job id"}
	}
	slog.Debug("remote job submitted", "device", batch.Device, "id", resp.ID, "circuits", len(batch.Qasms))
	return resp.ID, nil
}

// errorMessage flattens the error field, which may be a string or an object
// with a message.
func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

// JobStatus implements Backend.
func (c *Client) JobStatus(ctx context.Context, id string) (*JobStatus, error) {
	var status JobStatus
	if err := c.do(ctx, http.MethodGet, "/Jobs/"+url.PathEscape(id), nil, &status); err != nil {
		return nil, err
	}
	if status.ID == "" {
		status.ID = id
	}
	return &status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", c.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
