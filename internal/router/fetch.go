package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dgnsrekt/propdash/internal/apperr"
)

const defaultMaxBodyBytes = 4 << 20

// Fetcher retrieves a fragment by its path.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

// HTTPFetcher fetches fragments relative to a base URL.
type HTTPFetcher struct {
	client       *http.Client
	base         *url.URL
	maxBodyBytes int64
}

// NewHTTPFetcher resolves fragment paths against baseURL. A nil client uses
// http.DefaultClient.
func NewHTTPFetcher(client *http.Client, baseURL string) (*HTTPFetcher, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, apperr.New(apperr.CodeValidation, "fragment base URL is required", nil)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperr.New(apperr.CodeValidation, "invalid fragment base URL", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, base: base, maxBodyBytes: defaultMaxBodyBytes}, nil
}

// Fetch GETs ref. Transport failures and non-2xx statuses return coded errors
// carrying the reason shown to the user.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (string, error) {
	target, err := f.base.Parse(ref)
	if err != nil {
		return "", apperr.New(apperr.CodeValidation, "invalid fragment path "+ref, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", apperr.New(apperr.CodeFetchTransport, "build request for "+ref, err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperr.New(apperr.CodeFetchTransport, "fetch "+ref, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", apperr.New(apperr.CodeFetchStatus, fmt.Sprintf("HTTP error! status: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return "", apperr.New(apperr.CodeFetchTransport, "read "+ref, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return "", apperr.New(apperr.CodeFetchTransport, fmt.Sprintf("fragment exceeds %d bytes", f.maxBodyBytes), nil)
	}
	return string(body), nil
}
