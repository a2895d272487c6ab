package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a JSON HTTP client for the gymcrm API.
type Client struct {
	client *http.Client
	url    string
}

// StatusError is returned when the server responds with an unexpected status code.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// NewClient creates a client for the server at url.
func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{Timeout: 10 * time.Second}, //nolint:mnd // 10 seconds
		url:    url,
	}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	for {
		resp, err := c.Do(ctx, http.MethodGet, urlPath, nil)
		if err == nil {
			status := resp.StatusCode
			if err = resp.Body.Close(); err != nil {
				return fmt.Errorf("close response body: %w", err)
			}
			if status == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Do sends a request with an optional JSON body and returns the raw response. The caller closes the body.
func (c *Client) Do(ctx context.Context, method, urlPath string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// DoJSON sends a request and decodes the JSON response into out unless out is nil.
//
// A status code other than wantStatus results in a *StatusError.
func (c *Client) DoJSON(ctx context.Context, method, urlPath string, body any, wantStatus int, out any) error {
	resp, err := c.Do(ctx, method, urlPath, body)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		return &StatusError{
			Method:     method,
			Path:       urlPath,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(raw)),
		}
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, urlPath, err)
	}
	return nil
}

// GetJSON fetches urlPath and decodes the 200 OK response into out.
func (c *Client) GetJSON(ctx context.Context, urlPath string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, urlPath, nil, http.StatusOK, out)
}

// PostJSON posts body to urlPath and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, urlPath string, body any, wantStatus int, out any) error {
	return c.DoJSON(ctx, http.MethodPost, urlPath, body, wantStatus, out)
}

// PutJSON puts body to urlPath and decodes the 200 OK response into out.
func (c *Client) PutJSON(ctx context.Context, urlPath string, body any, out any) error {
	return c.DoJSON(ctx, http.MethodPut, urlPath, body, http.StatusOK, out)
}
