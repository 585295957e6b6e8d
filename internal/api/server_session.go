package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/propdash/internal/chart"
	"github.com/dgnsrekt/propdash/internal/router"
	"github.com/dgnsrekt/propdash/internal/session"
)

// SessionCookieInput binds the session cookie. It must stay exported so huma
// binds it when embedded in operation inputs.
type SessionCookieInput struct {
	Session string `cookie:"propdash_session" doc:"Session id set by GET / or POST /api/v1/session"`
}

type sessionInfo struct {
	ID        string       `json:"id"`
	Created   time.Time    `json:"created"`
	ActiveTab string       `json:"active_tab"`
	State     router.State `json:"state"`
	Content   string       `json:"content,omitempty"`
}

func describeSession(s *session.Session, withContent bool) sessionInfo {
	info := sessionInfo{
		ID:        s.ID,
		Created:   s.Created,
		ActiveTab: s.Router.Active(),
		State:     s.Router.State(),
	}
	if withContent {
		info.Content = s.Page.Content()
	}
	return info
}

func registerSessionHandlers(api huma.API, sessions *session.Manager) {
	type sessionOutput struct {
		SetCookie http.Cookie `header:"Set-Cookie"`
		Body      sessionInfo
	}
	huma.Register(api, huma.Operation{OperationID: "create-session", Method: http.MethodPost, Path: "/api/v1/session", Summary: "Start a new dashboard session", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*sessionOutput, error) {
			s, err := sessions.Create()
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.SetCookie = *sessions.Cookie(s.ID)
			out.Body = describeSession(s, false)
			return out, nil
		})

	type getSessionOutput struct {
		Body sessionInfo
	}
	huma.Register(api, huma.Operation{OperationID: "get-session", Method: http.MethodGet, Path: "/api/v1/session", Summary: "Current navigation state", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct {
			SessionCookieInput
			Content bool `query:"content" doc:"Include the content region markup"`
		}) (*getSessionOutput, error) {
			s, err := sessions.Lookup(input.Session)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &getSessionOutput{}
			out.Body = describeSession(s, input.Content)
			return out, nil
		})

	type deleteSessionOutput struct {
		SetCookie http.Cookie `header:"Set-Cookie"`
		Body      struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-session", Method: http.MethodDelete, Path: "/api/v1/session", Summary: "End the current session", Tags: []string{"Session"}},
		func(ctx context.Context, input *SessionCookieInput) (*deleteSessionOutput, error) {
			s, err := sessions.Lookup(input.Session)
			if err != nil {
				return nil, mapErr(err)
			}
			sessions.Delete(s.ID)
			out := &deleteSessionOutput{}
			out.SetCookie = *sessions.Cookie("")
			out.SetCookie.MaxAge = -1
			out.Body.Status = "deleted"
			return out, nil
		})
}

type tabInfo struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Inline   bool           `json:"inline"`
	Fragment string         `json:"fragment,omitempty"`
	Extract  router.Extract `json:"extract,omitempty"`
	Charts   chart.Set      `json:"charts,omitempty"`
	Active   bool           `json:"active"`
}

func registerTabHandlers(api huma.API, sessions *session.Manager) {
	type listTabsOutput struct {
		Body struct {
			Tabs []tabInfo `json:"tabs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List navigation tabs", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *SessionCookieInput) (*listTabsOutput, error) {
			active := ""
			if s, ok := sessions.Get(input.Session); ok {
				active = s.Router.Active()
			}
			out := &listTabsOutput{}
			out.Body.Tabs = []tabInfo{}
			for _, d := range sessions.Registry().All() {
				info := tabInfo{ID: d.ID, Label: d.Label, Inline: d.Inline, Fragment: d.Fragment, Charts: d.Charts, Active: d.ID == active}
				if !d.Inline {
					info.Extract = d.Extract
				}
				out.Body.Tabs = append(out.Body.Tabs, info)
			}
			return out, nil
		})

	type activateOutput struct {
		Body router.Outcome
	}
	huma.Register(api, huma.Operation{
		OperationID: "activate-tab",
		Method:      http.MethodPost,
		Path:        "/api/v1/tabs/{tab_id}/activate",
		Summary:     "Activate a tab",
		Description: "Moves the active marker to the tab and loads its content. With wait=true (default) the response carries the terminal outcome: content markup and the charts rendered into it. A result superseded by a newer activation reports state \"stale\".",
		Tags:        []string{"Tabs"},
	},
		func(ctx context.Context, input *struct {
			SessionCookieInput
			TabID string `path:"tab_id" example:"reports"`
			Wait  bool   `query:"wait" default:"true" doc:"Wait for the terminal outcome"`
		}) (*activateOutput, error) {
			s, err := sessions.Lookup(input.Session)
			if err != nil {
				return nil, mapErr(err)
			}
			load, err := s.Router.Activate(input.TabID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &activateOutput{}
			if !input.Wait {
				if res, ok := load.Result(); ok {
					out.Body = res
				} else {
					out.Body = router.Outcome{Seq: load.Seq, Tab: load.Tab, State: router.StateLoading, Content: router.LoadingMarkup}
				}
				return out, nil
			}
			res, err := load.Wait(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out.Body = res
			return out, nil
		})
}

func registerChartHandlers(api huma.API) {
	type chartsOutput struct {
		Body struct {
			Set    chart.Set        `json:"set"`
			Charts []chart.Rendered `json:"charts"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-chart-set", Method: http.MethodGet, Path: "/api/v1/charts/{set}", Summary: "Chart configurations of a render set", Tags: []string{"Charts"}},
		func(ctx context.Context, input *struct {
			Set string `path:"set" enum:"dashboard,reports,utilities"`
		}) (*chartsOutput, error) {
			set, err := chart.ParseSet(input.Set)
			if err != nil || set == chart.SetNone {
				return nil, huma.Error400BadRequest("unknown chart set " + input.Set)
			}
			out := &chartsOutput{}
			out.Body.Set = set
			out.Body.Charts = []chart.Rendered{}
			for _, spec := range set.Specs() {
				out.Body.Charts = append(out.Body.Charts, chart.Rendered{Target: spec.Target, Config: spec.Config()})
			}
			return out, nil
		})
}
