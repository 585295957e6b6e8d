package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/propdash/internal/documents"
)

func registerDocumentHandlers(api huma.API, svc DocumentService) {
	type resultOutput struct {
		Body documents.Result
	}
	huma.Register(api, huma.Operation{OperationID: "upload-document", Method: http.MethodPost, Path: "/api/v1/documents", Summary: "Upload and process a text document", Tags: []string{"Documents"}},
		func(ctx context.Context, input *struct {
			Body struct {
				FileName string `json:"file_name" minLength:"1" doc:"Original file name; the extension selects the extractor" example:"lease.txt"`
				Content  string `json:"content" doc:"Document text"`
			}
		}) (*resultOutput, error) {
			res, err := svc.Upload(ctx, input.Body.FileName, []byte(input.Body.Content))
			if err != nil {
				return nil, mapErr(err)
			}
			out := &resultOutput{}
			out.Body = res
			return out, nil
		})

	type batchOutput struct {
		Body struct {
			Results []documents.Result `json:"results"`
			Summary documents.Summary  `json:"summary"`
		}
	}
	batch := func(results []documents.Result) *batchOutput {
		out := &batchOutput{}
		out.Body.Results = results
		if out.Body.Results == nil {
			out.Body.Results = []documents.Result{}
		}
		out.Body.Summary = documents.Summarize(results)
		return out
	}
	huma.Register(api, huma.Operation{OperationID: "process-samples", Method: http.MethodPost, Path: "/api/v1/documents/samples", Summary: "Create and process the sample lease and invoice", Tags: []string{"Documents"}},
		func(ctx context.Context, input *struct{}) (*batchOutput, error) {
			results, err := svc.ProcessSamples(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return batch(results), nil
		})

	huma.Register(api, huma.Operation{OperationID: "process-directory", Method: http.MethodPost, Path: "/api/v1/documents/scan", Summary: "Process every supported file in the documents directory", Tags: []string{"Documents"}},
		func(ctx context.Context, input *struct{}) (*batchOutput, error) {
			results, err := svc.ProcessDirectory(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return batch(results), nil
		})

	huma.Register(api, huma.Operation{OperationID: "list-documents", Method: http.MethodGet, Path: "/api/v1/documents", Summary: "List processed documents", Tags: []string{"Documents"}},
		func(ctx context.Context, input *struct{}) (*batchOutput, error) {
			results, err := svc.List()
			if err != nil {
				return nil, mapErr(err)
			}
			return batch(results), nil
		})

	type resultIDInput struct {
		ResultID string `path:"result_id"`
	}
	huma.Register(api, huma.Operation{OperationID: "get-document", Method: http.MethodGet, Path: "/api/v1/documents/{result_id}", Summary: "Get one processing result", Tags: []string{"Documents"}},
		func(ctx context.Context, input *resultIDInput) (*resultOutput, error) {
			res, err := svc.Get(input.ResultID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &resultOutput{}
			out.Body = res
			return out, nil
		})

	type deleteOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-document", Method: http.MethodDelete, Path: "/api/v1/documents/{result_id}", Summary: "Delete one processing result", Tags: []string{"Documents"}},
		func(ctx context.Context, input *resultIDInput) (*deleteOutput, error) {
			if err := svc.Delete(input.ResultID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})

	type exportOutput struct {
		Body struct {
			Path  string `json:"path"`
			Count int    `json:"count"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "export-documents", Method: http.MethodPost, Path: "/api/v1/documents/export", Summary: "Export all results to one JSON file", Tags: []string{"Documents"}},
		func(ctx context.Context, input *struct{}) (*exportOutput, error) {
			path, n, err := svc.Export()
			if err != nil {
				return nil, mapErr(err)
			}
			out := &exportOutput{}
			out.Body.Path = path
			out.Body.Count = n
			return out, nil
		})
}
