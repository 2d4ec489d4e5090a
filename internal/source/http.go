package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// getJSON issues a one-shot GET and decodes the body into out. Non-2xx
// responses are reported with a trimmed body excerpt for attribution.
func getJSON(ctx context.Context, client *http.Client, url, userAgent string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpStatusError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func httpStatusError(status int, payload []byte) error {
	excerpt := strings.TrimSpace(string(payload))
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	if excerpt != "" {
		return fmt.Errorf("unexpected status %d: %s", status, excerpt)
	}
	return fmt.Errorf("unexpected status %d", status)
}
