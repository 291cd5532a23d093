package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// httpClient is a thin wrapper for anonymous JSON API calls.
type httpClient struct {
	base string // API root (e.g., "https://hub.docker.com")
}

func (c *httpClient) getJSON(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("GET %s: %d %s", url, resp.StatusCode, truncateBody(body, 512))
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decoding response from GET %s: %w", url, err)
		}
	}
	return nil
}

func truncateBody(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
