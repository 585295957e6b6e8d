//go:build integration

package integration

import (
	"net/http"
	"testing"
)

type docResult struct {
	ID           string            `json:"id"`
	FileName     string            `json:"file_name"`
	DocumentType string            `json:"document_type"`
	Entities     map[string]string `json:"entities"`
	Error        string            `json:"error"`
}

func TestDocumentUploadRoundTrip(t *testing.T) {
	resp := env.POST(t, "/api/v1/documents", map[string]any{
		"file_name": "integration_lease.txt",
		"content":   "RESIDENTIAL LEASE AGREEMENT\nTenant: Integration Tester\nMonthly Rent: $1500.00\nThe landlord and tenant agree to these terms.",
	})
	requireStatus(t, resp, http.StatusOK)
	res := decodeJSON[docResult](t, resp)
	requireField(t, res.DocumentType, "lease", "document_type")
	requireField(t, res.Entities["tenant_name"], "Integration Tester", "tenant_name")

	resp = env.GET(t, "/api/v1/documents/"+res.ID)
	requireStatus(t, resp, http.StatusOK)
	got := decodeJSON[docResult](t, resp)
	requireField(t, got.FileName, "integration_lease.txt", "file_name")

	resp = env.DELETE(t, "/api/v1/documents/"+res.ID)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.GET(t, "/api/v1/documents/"+res.ID)
	requireStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestDocumentUnsupportedFormat(t *testing.T) {
	resp := env.POST(t, "/api/v1/documents", map[string]any{
		"file_name": "scan.pdf",
		"content":   "%PDF-1.4",
	})
	requireStatus(t, resp, http.StatusUnprocessableEntity)
	resp.Body.Close()
}

func TestDocumentsTabShowsResults(t *testing.T) {
	resp := env.POST(t, "/api/v1/documents/samples", nil)
	requireStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	out := activate(t, "documents")
	requireField(t, out.State, "loaded", "state")

	resp = env.GET(t, "/api/v1/documents")
	requireStatus(t, resp, http.StatusOK)
	listing := decodeJSON[struct {
		Results []docResult `json:"results"`
		Summary struct {
			Processed int `json:"processed"`
		} `json:"summary"`
	}](t, resp)
	if listing.Summary.Processed < 2 || len(listing.Results) != listing.Summary.Processed {
		t.Fatalf("listing summary = %+v with %d results", listing.Summary, len(listing.Results))
	}
}
