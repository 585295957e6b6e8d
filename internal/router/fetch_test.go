package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgnsrekt/propdash/internal/apperr"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestHTTPFetcherResolvesAgainstBase(t *testing.T) {
	var gotURL, gotAccept string
	client := &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotURL = r.URL.String()
			gotAccept = r.Header.Get("Accept")
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("<main>ok</main>")),
				Header:     make(http.Header),
			}, nil
		}),
	}

	f, err := NewHTTPFetcher(client, "http://example.com/fragments")
	if err != nil {
		t.Fatalf("NewHTTPFetcher() error = %v", err)
	}
	body, err := f.Fetch(context.Background(), "properties.html")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != "<main>ok</main>" {
		t.Fatalf("Fetch() body = %q; want %q", body, "<main>ok</main>")
	}
	if got, want := gotURL, "http://example.com/fragments/properties.html"; got != want {
		t.Fatalf("url = %q; want %q", got, want)
	}
	if gotAccept != "text/html" {
		t.Fatalf("accept = %q; want text/html", gotAccept)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("NewHTTPFetcher() error = %v", err)
	}
	_, err = f.Fetch(context.Background(), "missing.html")
	if apperr.Code(err) != apperr.CodeFetchStatus {
		t.Fatalf("Fetch() code = %q; want %q (err=%v)", apperr.Code(err), apperr.CodeFetchStatus, err)
	}
	if got, want := apperr.Reason(err), "HTTP error! status: 404"; got != want {
		t.Fatalf("Reason() = %q; want %q", got, want)
	}
}

func TestHTTPFetcherTransportError(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	client := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, boom
		}),
	}
	f, err := NewHTTPFetcher(client, "http://example.com/")
	if err != nil {
		t.Fatalf("NewHTTPFetcher() error = %v", err)
	}
	_, err = f.Fetch(context.Background(), "tenants.html")
	if apperr.Code(err) != apperr.CodeFetchTransport {
		t.Fatalf("Fetch() code = %q; want %q", apperr.Code(err), apperr.CodeFetchTransport)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Fetch() error = %v; want to wrap %v", err, boom)
	}
}

func TestNewHTTPFetcherRequiresBase(t *testing.T) {
	if _, err := NewHTTPFetcher(nil, "  "); apperr.Code(err) != apperr.CodeValidation {
		t.Fatalf("NewHTTPFetcher(blank) code = %q; want %q", apperr.Code(err), apperr.CodeValidation)
	}
}

func TestHTTPFetcherRejectsOversizedFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 17))
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("NewHTTPFetcher() error = %v", err)
	}
	f.maxBodyBytes = 16
	body, err := f.Fetch(context.Background(), "big.html")
	if apperr.Code(err) != apperr.CodeFetchTransport || body != "" {
		t.Fatalf("Fetch() = %q, %v; want %s error and no body", body, err, apperr.CodeFetchTransport)
	}
	if got, want := apperr.Reason(err), "fragment exceeds 16 bytes"; got != want {
		t.Fatalf("Reason() = %q; want %q", got, want)
	}

	f.maxBodyBytes = 17
	if body, err := f.Fetch(context.Background(), "big.html"); err != nil || len(body) != 17 {
		t.Fatalf("Fetch() at limit = %d bytes, %v; want the full body", len(body), err)
	}
}
