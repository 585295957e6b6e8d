package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/propdash/internal/netutil"
)

// DashboardConfig holds configuration for the dashboard service.
type DashboardConfig struct {
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
	LogLevel         string
	LogFile          string

	// FragmentBaseURL is where remote tab fragments are fetched from. Empty
	// means the service's own /fragments/ route.
	FragmentBaseURL string
	FetchTimeoutMS  int
	TabsConfig      string

	SessionIdleMinutes int
	MaxSessions        int
	SecureCookie       bool

	DocumentsDir      string
	ResultsDir        string
	DocumentBatchSize int
}

// LoadDashboard reads dashboard configuration from environment variables.
func LoadDashboard() (*DashboardConfig, error) {
	loadDotEnv()

	bind := getEnvOrDefault("DASHBOARD_BIND_ADDR", "127.0.0.1:8290")
	host, _, err := netutil.SplitHostPort(bind)
	if err != nil {
		return nil, fmt.Errorf("DASHBOARD_BIND_ADDR: %w", err)
	}
	candidates, err := netutil.ParseCandidates(host, getEnvOrDefault("DASHBOARD_PORT_CANDIDATES", "8291-8299"))
	if err != nil {
		return nil, fmt.Errorf("DASHBOARD_PORT_CANDIDATES: %w", err)
	}

	cfg := &DashboardConfig{
		BindAddr:           bind,
		PortCandidates:     candidates,
		PortAutoFallback:   getEnvBoolOrDefault("DASHBOARD_PORT_AUTO_FALLBACK", true),
		LogLevel:           strings.ToLower(getEnvOrDefault("DASHBOARD_LOG_LEVEL", "info")),
		LogFile:            getEnvOrDefault("DASHBOARD_LOG_FILE", "logs/dashboard.log"),
		FragmentBaseURL:    getEnvOrDefault("DASHBOARD_FRAGMENT_BASE_URL", ""),
		FetchTimeoutMS:     getEnvIntOrDefault("DASHBOARD_FETCH_TIMEOUT_MS", 0),
		TabsConfig:         getEnvOrDefault("DASHBOARD_TABS_CONFIG", ""),
		SessionIdleMinutes: getEnvIntOrDefault("DASHBOARD_SESSION_IDLE_MINUTES", 60),
		MaxSessions:        getEnvIntOrDefault("DASHBOARD_MAX_SESSIONS", 1000),
		SecureCookie:       getEnvBoolOrDefault("DASHBOARD_SECURE_COOKIE", false),
		DocumentsDir:       getEnvOrDefault("DOCUMENTS_DIR", "./documents"),
		ResultsDir:         getEnvOrDefault("DOCUMENTS_RESULTS_DIR", "./processed_results"),
		DocumentBatchSize:  getEnvIntOrDefault("DOCUMENTS_BATCH_CONCURRENCY", 4),
	}
	if cfg.FetchTimeoutMS < 0 {
		cfg.FetchTimeoutMS = 0
	}
	if cfg.DocumentBatchSize < 1 {
		cfg.DocumentBatchSize = 1
	}
	return cfg, nil
}

// FetchTimeout is the fragment client timeout; zero leaves the client
// without one.
func (c *DashboardConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// SessionIdle is how long an unused session survives.
func (c *DashboardConfig) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// FragmentBase returns the configured fragment origin, or the service's own
// fragment route at bindAddr.
func (c *DashboardConfig) FragmentBase(bindAddr string) string {
	if c.FragmentBaseURL != "" {
		return c.FragmentBaseURL
	}
	return netutil.HTTPBaseURL(bindAddr) + "/fragments/"
}
