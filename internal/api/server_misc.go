package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func registerMiscHandlers(api huma.API, d Deps) {
	type healthOutput struct {
		Body struct {
			Status        string `json:"status"`
			Sessions      int    `json:"sessions"`
			StreamClients int    `json:"stream_clients"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			out.Body.Sessions = d.Sessions.Count()
			if d.Broker != nil {
				out.Body.StreamClients = d.Broker.ClientCount()
			}
			return out, nil
		})
}
