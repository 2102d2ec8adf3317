package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxResponseBytes bounds a single provider response body.
const maxResponseBytes = 4 << 20 // 4MB

// fetchJSON issues a GET and decodes the JSON response into v. Network errors
// and 5xx responses are retried up to retries additional attempts; 4xx
// responses fail immediately since repeating them cannot help.
func fetchJSON(ctx context.Context, client *http.Client, url, userAgent string, retries int, v interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		retry, err := fetchJSONOnce(ctx, client, url, userAgent, v)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}

	return fmt.Errorf("after %d attempts: %w", retries+1, lastErr)
}

func fetchJSONOnce(ctx context.Context, client *http.Client, url, userAgent string, v interface{}) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused across retries.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		return resp.StatusCode >= 500, err
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return false, nil
}
