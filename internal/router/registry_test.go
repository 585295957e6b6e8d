package router

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/propdash/internal/chart"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	props, ok := r.Get("properties")
	if !ok || props.Extract != ExtractMain || props.Fragment != "properties.html" {
		t.Fatalf("properties = %+v, %v; want main extraction of properties.html", props, ok)
	}
	tenants, _ := r.Get("tenants")
	if tenants.Extract != ExtractRaw {
		t.Fatalf("tenants extract = %q; want %q", tenants.Extract, ExtractRaw)
	}
	dash, _ := r.Get("dashboard")
	if !dash.Inline || dash.Charts != chart.SetDashboard {
		t.Fatalf("dashboard = %+v; want inline with dashboard charts", dash)
	}
	if got := len(r.All()); got != len(DefaultTabs()) {
		t.Fatalf("All() = %d tabs; want %d", got, len(DefaultTabs()))
	}
	if r.All()[0].ID != "dashboard" {
		t.Fatalf("first tab = %q; want dashboard", r.All()[0].ID)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(TabDescriptor{ID: "properties", Fragment: "properties.html"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := r.Register(TabDescriptor{ID: "properties", Fragment: "properties.html", Extract: ExtractMain})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("Register(duplicate) error = %v; want already registered", err)
	}
}

func TestRegisterValidates(t *testing.T) {
	cases := map[string]TabDescriptor{
		"missing id":      {Fragment: "x.html"},
		"inline+fragment": {ID: "a", Inline: true, Fragment: "a.html"},
		"neither":         {ID: "a"},
		"bad extract":     {ID: "a", Fragment: "a.html", Extract: "body"},
		"bad charts":      {ID: "a", Fragment: "a.html", Charts: "pie"},
	}
	for name, d := range cases {
		if err := NewRegistry().Register(d); err == nil {
			t.Fatalf("%s: Register() = nil; want error", name)
		}
	}
}

func TestLoadRegistryYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabs.yaml")
	data := `tabs:
  - id: dashboard
    label: Overview
    inline: true
    charts: dashboard
  - id: properties
    fragment: properties.html
    extract: main
  - id: utilities
    fragment: utilities.html
    charts: utilities
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if got := len(r.All()); got != 3 {
		t.Fatalf("All() = %d; want 3", got)
	}
	d, _ := r.Get("dashboard")
	if d.Label != "Overview" || !d.Inline {
		t.Fatalf("dashboard = %+v", d)
	}
	u, _ := r.Get("utilities")
	if u.Charts != chart.SetUtilities || u.Extract != ExtractRaw || u.Label != "utilities" {
		t.Fatalf("utilities = %+v", u)
	}
}

func TestLoadRegistryRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("tabs: []\n"), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	if _, err := LoadRegistry(empty); err == nil {
		t.Fatal("LoadRegistry(empty) = nil error")
	}

	dup := filepath.Join(dir, "dup.yaml")
	if err := os.WriteFile(dup, []byte("tabs:\n  - id: a\n    fragment: a.html\n  - id: a\n    fragment: b.html\n"), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	if _, err := LoadRegistry(dup); err == nil || !strings.Contains(err.Error(), "tabs[1]") {
		t.Fatalf("LoadRegistry(dup) error = %v; want tabs[1] error", err)
	}

	if _, err := LoadRegistry(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("LoadRegistry(missing) = nil error")
	}
}
