// Package source fetches the raw record collection for one hour window
// from the upstream log endpoint.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"context"

	perr "logvault/internal/platform/errors"
)

// maxBodyBytes bounds a single hour's payload
const maxBodyBytes = 256 << 20

// Fetcher returns the record collection for a given date + hour window.
// Any collection size, including empty, is valid
type Fetcher interface {
	Fetch(ctx context.Context, date, hourRange string) ([]map[string]any, error)
}

// HTTPFetcher fetches from an HTTP endpoint serving JSON arrays at
// <base>/<date>/<hour-range>
type HTTPFetcher struct {
	base   string
	client *http.Client
}

// NewHTTP constructs an HTTPFetcher; timeout 0 means no client timeout
func NewHTTP(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, date, hourRange string) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/%s/%s", f.base, date, hourRange)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeSource, "fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, perr.Sourcef("unexpected status %d for %s", resp.StatusCode, url)
	}

	body := io.LimitReader(resp.Body, maxBodyBytes)
	var records []map[string]any
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeSource, "decode %s", url)
	}
	return records, nil
}
