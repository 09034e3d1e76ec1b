package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// maxResponseSize is the maximum allowed response size from a provider (10MB)
const maxResponseSize = 10 * 1024 * 1024

// doJSON sends body (if any) as JSON and decodes the response into out.
// Transport failures and HTTP status >= 400 wrap ErrProviderRequestFailed;
// undecodable bodies wrap ErrProviderInvalidResponse.
// Credentials travel in query strings, so transport errors never echo the query.
func doJSON(ctx context.Context, client *http.Client, method, endpoint string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request %s: %w", redactURL(endpoint), stripURL(err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			return fmt.Errorf("%w: %s %s: %w", pricing.ErrProviderRequestFailed, ue.Op, redactURL(ue.URL), ue.Err)
		}
		return fmt.Errorf("%w: %v", pricing.ErrProviderRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", pricing.ErrProviderRequestFailed, err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d: %s", pricing.ErrProviderRequestFailed, resp.StatusCode, truncate(raw, 200))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", pricing.ErrProviderInvalidResponse, err)
	}
	return nil
}

// stripURL drops the *url.Error wrapper, whose message carries the full URL
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// redactURL keeps scheme, host and path and drops query and user info
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
