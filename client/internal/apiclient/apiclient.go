// Package apiclient is the remote post store adapter: it talks to the
// confessions backend over HTTP.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	internal_errors "github.com/itchan-dev/confessions/shared/errors"
)

// APIClient handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client whose requests give up after timeout.
func New(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: timeout},
	}
}

// do is the single helper for making API requests.
func (c *APIClient) do(ctx context.Context, op, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, &internal_errors.RemoteStoreError{Op: op, Message: "failed to create API request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, &internal_errors.RemoteStoreError{Op: op, Message: "backend unavailable", Err: err}
	}
	return resp, nil
}

// statusError turns a non-2xx response into a RemoteStoreError carrying the
// backend's plain-text message.
func statusError(op string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	text := strings.TrimSpace(string(msg))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &internal_errors.RemoteStoreError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    text,
		Err:        fmt.Errorf("backend returned status %d", resp.StatusCode),
	}
}
