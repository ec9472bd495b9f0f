package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// HTTPClient wraps http.Client with a base URL and request counting.
type HTTPClient struct {
	client   *http.Client
	baseURL  string
	requests atomic.Int64
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends method path with an optional JSON body and reads the reply.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", "smoke-"+uuid.NewString())

	c.requests.Add(1)
	resp, err := c.client.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	return response{status: resp.StatusCode, body: data}, nil
}

// expect sends the request and fails unless the status matches. When out is
// non-nil the body is decoded into it.
func (c *HTTPClient) expect(ctx context.Context, method, path string, body any, status int, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if resp.status != status {
		return fmt.Errorf("%w: %s %s: status %d, want %d: %s",
			ErrPropertyViolated, method, path, resp.status, status, bytes.TrimSpace(resp.body))
	}
	if out != nil {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return fmt.Errorf("%w: %s %s: decode body: %w", ErrPropertyViolated, method, path, err)
		}
	}
	return nil
}

func memberPath(id int) string {
	return fmt.Sprintf("/members/%d", id)
}
