package router

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgnsrekt/propdash/internal/chart"
	"gopkg.in/yaml.v3"
)

// Extract selects how a fetched fragment becomes content-region markup.
type Extract string

const (
	// ExtractRaw injects the fetched body verbatim.
	ExtractRaw Extract = "raw"
	// ExtractMain injects the inner markup of the first main landmark, or
	// MainFallback when the fragment has none.
	ExtractMain Extract = "main"
)

// TabDescriptor is the single registration for one navigation tab. A tab is
// either Inline (restores the startup snapshot) or loads Fragment, a path
// resolved against the fragment origin on every activation.
type TabDescriptor struct {
	ID       string    `yaml:"id" json:"id"`
	Label    string    `yaml:"label" json:"label"`
	Inline   bool      `yaml:"inline,omitempty" json:"inline,omitempty"`
	Fragment string    `yaml:"fragment,omitempty" json:"fragment,omitempty"`
	Extract  Extract   `yaml:"extract,omitempty" json:"extract,omitempty"`
	Charts   chart.Set `yaml:"charts,omitempty" json:"charts,omitempty"`
}

func (d TabDescriptor) validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("tab id is required")
	}
	if d.Inline == (d.Fragment != "") {
		return fmt.Errorf("tab %q: exactly one of inline or fragment must be set", d.ID)
	}
	switch d.Extract {
	case "", ExtractRaw, ExtractMain:
	default:
		return fmt.Errorf("tab %q: unknown extract %q", d.ID, d.Extract)
	}
	if _, err := chart.ParseSet(string(d.Charts)); err != nil {
		return fmt.Errorf("tab %q: %w", d.ID, err)
	}
	return nil
}

// Registry holds tab descriptors keyed by id, in registration order.
type Registry struct {
	order []string
	tabs  map[string]TabDescriptor
}

func NewRegistry() *Registry {
	return &Registry{tabs: make(map[string]TabDescriptor)}
}

// Register adds a descriptor. Each tab id may be registered once.
func (r *Registry) Register(d TabDescriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	if _, dup := r.tabs[d.ID]; dup {
		return fmt.Errorf("tab %q already registered", d.ID)
	}
	if d.Extract == "" {
		d.Extract = ExtractRaw
	}
	if d.Label == "" {
		d.Label = d.ID
	}
	r.tabs[d.ID] = d
	r.order = append(r.order, d.ID)
	return nil
}

func (r *Registry) Get(id string) (TabDescriptor, bool) {
	d, ok := r.tabs[id]
	return d, ok
}

// All returns descriptors in registration order.
func (r *Registry) All() []TabDescriptor {
	out := make([]TabDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tabs[id])
	}
	return out
}

// DefaultTabs is the dashboard navigation set.
func DefaultTabs() []TabDescriptor {
	return []TabDescriptor{
		{ID: "dashboard", Label: "Dashboard", Inline: true, Charts: chart.SetDashboard},
		{ID: "properties", Label: "Properties", Fragment: "properties.html", Extract: ExtractMain},
		{ID: "tenants", Label: "Tenants", Fragment: "tenants.html"},
		{ID: "leases", Label: "Leases", Fragment: "leases.html"},
		{ID: "reports", Label: "Reports & Analytics", Fragment: "reports_analytics.html", Charts: chart.SetReports},
		{ID: "billing", Label: "Billing & Payments", Fragment: "billing_payments.html"},
		{ID: "utilities", Label: "Utilities", Fragment: "utilities.html", Charts: chart.SetUtilities},
		{ID: "documents", Label: "Documents", Fragment: "documents.html"},
	}
}

// DefaultRegistry builds a Registry from DefaultTabs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range DefaultTabs() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

type registryFile struct {
	Tabs []TabDescriptor `yaml:"tabs"`
}

// LoadRegistry reads tab descriptors from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tab registry: %w", err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("tab registry: %w", err)
	}
	if len(file.Tabs) == 0 {
		return nil, fmt.Errorf("tab registry: %s defines no tabs", path)
	}
	r := NewRegistry()
	for i, d := range file.Tabs {
		if err := r.Register(d); err != nil {
			return nil, fmt.Errorf("tab registry: tabs[%d]: %w", i, err)
		}
	}
	return r, nil
}
