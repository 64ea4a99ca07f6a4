package vressdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs an unauthenticated JSON request and decodes the response
// into target (which may be nil). Credential endpoints share the strict
// rate budget.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, target any) error {
	if err := c.limits.waitAuth(ctx); err != nil {
		return err
	}
	return do(ctx, c.HTTPClient, method, c.url(path), reqBody, target, "")
}

// doJSON performs an authenticated JSON request with the session's token.
func (s *Session) doJSON(ctx context.Context, method, path string, reqBody, target any) error {
	if err := s.client.limits.waitAPI(ctx); err != nil {
		return err
	}
	return do(ctx, s.client.HTTPClient, method, s.client.url(path), reqBody, target, s.token)
}

func do(ctx context.Context, hc *http.Client, method, url string, reqBody, target any, token string) error {
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		// Transport failures keep the underlying error text so the user
		// sees what actually went wrong on the wire.
		return fmt.Errorf("request failed: %w", err)
	}

	return decodeJSON(resp, target)
}

// decodeJSON decodes a JSON response into target. Non-2xx responses become
// a typed *APIError.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp.StatusCode, raw)
	}

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
