package chart

// Kind is a chart type understood by the charting library.
type Kind string

const (
	KindLine     Kind = "line"
	KindBar      Kind = "bar"
	KindDoughnut Kind = "doughnut"
)

// Dataset is one series of a chart. Color applies to the whole series;
// Colors, when set, gives one color per value (doughnut slices).
type Dataset struct {
	Label  string
	Values []float64
	Color  string
	Colors []string
}

// Spec is a static chart definition bound to a canvas target id.
type Spec struct {
	Target   string
	Kind     Kind
	Labels   []string
	Datasets []Dataset
	Options  map[string]any
}

// Config is the configuration object handed to the charting library
// (Chart.js shape).
type Config struct {
	Type    Kind           `json:"type"`
	Data    Data           `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}

type Data struct {
	Labels   []string        `json:"labels"`
	Datasets []DatasetConfig `json:"datasets"`
}

type DatasetConfig struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BorderColor     any       `json:"borderColor,omitempty"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	Fill            bool      `json:"fill"`
	Tension         float64   `json:"tension,omitempty"`
}

// Config derives the library configuration. Slices are copied so callers can
// not alter the literal sample data.
func (s Spec) Config() Config {
	cfg := Config{
		Type: s.Kind,
		Data: Data{
			Labels:   append([]string(nil), s.Labels...),
			Datasets: make([]DatasetConfig, 0, len(s.Datasets)),
		},
		Options: s.Options,
	}
	for _, ds := range s.Datasets {
		dc := DatasetConfig{
			Label: ds.Label,
			Data:  append([]float64(nil), ds.Values...),
		}
		switch {
		case len(ds.Colors) > 0:
			dc.BackgroundColor = append([]string(nil), ds.Colors...)
		case s.Kind == KindLine:
			dc.BorderColor = ds.Color
			dc.BackgroundColor = ds.Color + "33"
			dc.Tension = 0.3
		default:
			dc.BackgroundColor = ds.Color
		}
		cfg.Data.Datasets = append(cfg.Data.Datasets, dc)
	}
	return cfg
}

func axisOptions() map[string]any {
	return map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
		"scales": map[string]any{
			"y": map[string]any{"beginAtZero": true},
		},
	}
}

func legendBottom() map[string]any {
	return map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
		"plugins": map[string]any{
			"legend": map[string]any{"position": "bottom"},
		},
	}
}

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// DashboardSpecs are the overview tab charts: revenue, occupancy, utility.
func DashboardSpecs() []Spec {
	return []Spec{
		{
			Target: "revenueChart",
			Kind:   KindLine,
			Labels: months,
			Datasets: []Dataset{
				{Label: "Monthly Revenue", Values: []float64{12000, 19000, 15000, 25000, 22000, 30000}, Color: "#4e73df"},
			},
			Options: axisOptions(),
		},
		{
			Target: "occupancyChart",
			Kind:   KindDoughnut,
			Labels: []string{"Occupied", "Vacant"},
			Datasets: []Dataset{
				{Values: []float64{85, 15}, Colors: []string{"#1cc88a", "#e74a3b"}},
			},
			Options: legendBottom(),
		},
		{
			Target: "utilityChart",
			Kind:   KindBar,
			Labels: []string{"Water", "Electricity", "Gas", "Internet"},
			Datasets: []Dataset{
				{Label: "Monthly Cost", Values: []float64{1200, 3400, 900, 600}, Color: "#36b9cc"},
			},
			Options: axisOptions(),
		},
	}
}

// ReportsSpecs are the reports tab charts: revenue, occupancy trend, payment status.
func ReportsSpecs() []Spec {
	trend := axisOptions()
	trend["scales"] = map[string]any{
		"y": map[string]any{"min": 80, "max": 100},
	}
	return []Spec{
		{
			Target: "revenueChart",
			Kind:   KindBar,
			Labels: months,
			Datasets: []Dataset{
				{Label: "Revenue", Values: []float64{45000, 47000, 46500, 49000, 51000, 53000}, Color: "#4e73df"},
				{Label: "Expenses", Values: []float64{30000, 31000, 29500, 32000, 33000, 34000}, Color: "#e74a3b"},
			},
			Options: axisOptions(),
		},
		{
			Target: "occupancyTrendChart",
			Kind:   KindLine,
			Labels: months,
			Datasets: []Dataset{
				{Label: "Occupancy Rate (%)", Values: []float64{88, 90, 87, 92, 94, 95}, Color: "#1cc88a"},
			},
			Options: trend,
		},
		{
			Target: "paymentStatusChart",
			Kind:   KindDoughnut,
			Labels: []string{"Paid", "Pending", "Overdue"},
			Datasets: []Dataset{
				{Values: []float64{70, 20, 10}, Colors: []string{"#1cc88a", "#f6c23e", "#e74a3b"}},
			},
			Options: legendBottom(),
		},
	}
}

// UtilitiesSpecs are the utilities tab charts.
func UtilitiesSpecs() []Spec {
	return []Spec{
		{
			Target: "waterUsageChart",
			Kind:   KindBar,
			Labels: months,
			Datasets: []Dataset{
				{Label: "Water Usage (gallons)", Values: []float64{12000, 11500, 13000, 12500, 14000, 15000}, Color: "#36b9cc"},
			},
			Options: axisOptions(),
		},
	}
}
