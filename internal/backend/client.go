// Package backend wraps the external job server that performs the real
// download, reframing and caption burn. The client is a thin transport: no
// retry or backoff lives here, the session's polling loop owns that.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reeldeck/reeldeck-agent/internal/reel"
)

// Error represents a non-2xx response from the job server.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend request failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx) and false for client
// errors, which are considered permanent.
func (e *Error) IsRetryable() bool {
	return e.StatusCode >= 500
}

// Client talks to a job server base URL chosen per call. The base URL is
// user-editable session state, so it is an argument rather than a field.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// SubmitURL posts a video URL for processing and returns the created job.
func (c *Client) SubmitURL(ctx context.Context, baseURL, videoURL string) (*reel.BackendProcessResponse, error) {
	body, err := json.Marshal(map[string]string{"url": videoURL})
	if err != nil {
		return nil, fmt.Errorf("marshal submit payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		joinURL(baseURL, "/process_url"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// SubmitUpload posts a video file as a multipart payload and returns the
// created job.
func (c *Client) SubmitUpload(ctx context.Context, baseURL, filename string, file io.Reader) (*reel.BackendProcessResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		joinURL(baseURL, "/process_upload"), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req)
}

// PollStatus fetches the current state of a job.
func (c *Client) PollStatus(ctx context.Context, baseURL, jobID string) (*reel.BackendProcessResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		joinURL(baseURL, "/status/"+url.PathEscape(jobID)), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*reel.BackendProcessResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out reel.BackendProcessResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode backend response: %w", err)
	}
	return &out, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
