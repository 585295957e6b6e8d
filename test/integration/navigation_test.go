//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
)

type outcome struct {
	Seq     uint64 `json:"seq"`
	Tab     string `json:"tab"`
	State   string `json:"state"`
	Content string `json:"content"`
	Charts  []struct {
		Target string `json:"target"`
	} `json:"charts"`
	Error string `json:"error"`
}

type tabEntry struct {
	ID     string `json:"id"`
	Inline bool   `json:"inline"`
	Charts string `json:"charts"`
	Active bool   `json:"active"`
}

func listTabs(t *testing.T) []tabEntry {
	t.Helper()
	resp := env.GET(t, "/api/v1/tabs")
	requireStatus(t, resp, http.StatusOK)
	return decodeJSON[struct {
		Tabs []tabEntry `json:"tabs"`
	}](t, resp).Tabs
}

func activate(t *testing.T, tab string) outcome {
	t.Helper()
	resp := env.POST(t, "/api/v1/tabs/"+tab+"/activate?wait=true", nil)
	requireStatus(t, resp, http.StatusOK)
	return decodeJSON[outcome](t, resp)
}

func TestActivateEveryTab(t *testing.T) {
	tabs := listTabs(t)
	if len(tabs) == 0 {
		t.Fatal("no tabs registered")
	}
	var lastSeq uint64
	for _, tab := range tabs {
		out := activate(t, tab.ID)
		requireField(t, out.Tab, tab.ID, "tab")
		if out.Seq <= lastSeq {
			t.Fatalf("%s: seq = %d; want > %d", tab.ID, out.Seq, lastSeq)
		}
		lastSeq = out.Seq

		want := "loaded"
		if tab.Inline {
			want = "inline_rendered"
		}
		if out.State != want {
			t.Fatalf("%s: state = %q (error %q); want %q", tab.ID, out.State, out.Error, want)
		}
		if strings.TrimSpace(out.Content) == "" {
			t.Fatalf("%s: empty content", tab.ID)
		}
		if tab.Charts != "" && len(out.Charts) == 0 {
			t.Fatalf("%s: chart set %q rendered no charts", tab.ID, tab.Charts)
		}
		t.Logf("%s: state=%s charts=%d content=%d bytes", tab.ID, out.State, len(out.Charts), len(out.Content))

		active := 0
		for _, entry := range listTabs(t) {
			if entry.Active {
				active++
				requireField(t, entry.ID, tab.ID, "active tab")
			}
		}
		requireField(t, active, 1, "active tab count")
	}
}

func TestUnknownTab(t *testing.T) {
	resp := env.POST(t, "/api/v1/tabs/no-such-tab/activate", nil)
	requireStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestSessionReflectsLastActivation(t *testing.T) {
	activate(t, "tenants")
	resp := env.GET(t, "/api/v1/session?content=true")
	requireStatus(t, resp, http.StatusOK)
	info := decodeJSON[struct {
		ID        string `json:"id"`
		ActiveTab string `json:"active_tab"`
		State     string `json:"state"`
		Content   string `json:"content"`
	}](t, resp)
	requireField(t, info.ID, env.SessionID, "session id")
	requireField(t, info.ActiveTab, "tenants", "active_tab")
	if !strings.Contains(info.Content, "Tenants") {
		t.Fatalf("session content does not show tenants: %.200s", info.Content)
	}
}
