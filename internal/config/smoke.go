package config

import (
	"fmt"
	"strings"
	"time"
)

// SmokeConfig holds configuration for the browser smoke walker.
type SmokeConfig struct {
	DashboardURL  string
	CDPAddress    string
	CDPPort       int
	Launch        bool
	ChromiumPath  string
	Headless      bool
	Tabs          []string
	StepTimeoutMS int
	LogLevel      string
	ReportFile    string
}

// LoadSmoke reads smoke walker configuration from environment variables.
func LoadSmoke() (*SmokeConfig, error) {
	loadDotEnv()

	cfg := &SmokeConfig{
		DashboardURL:  getEnvOrDefault("SMOKE_DASHBOARD_URL", "http://127.0.0.1:8290/"),
		CDPAddress:    getEnvOrDefault("SMOKE_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:       getEnvIntOrDefault("SMOKE_CDP_PORT", 9230),
		Launch:        getEnvBoolOrDefault("SMOKE_LAUNCH_BROWSER", true),
		ChromiumPath:  getEnvOrDefault("SMOKE_CHROMIUM_PATH", ""),
		Headless:      getEnvBoolOrDefault("SMOKE_HEADLESS", true),
		Tabs:          getEnvListOrDefault("SMOKE_TABS", nil),
		StepTimeoutMS: getEnvIntOrDefault("SMOKE_STEP_TIMEOUT_MS", 10000),
		LogLevel:      strings.ToLower(getEnvOrDefault("SMOKE_LOG_LEVEL", "info")),
		ReportFile:    getEnvOrDefault("SMOKE_REPORT_FILE", ""),
	}
	if cfg.StepTimeoutMS < 1000 {
		cfg.StepTimeoutMS = 1000
	}
	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint used by the chromedp remote allocator.
func (c *SmokeConfig) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

// StepTimeout bounds each click-and-wait step.
func (c *SmokeConfig) StepTimeout() time.Duration {
	return time.Duration(c.StepTimeoutMS) * time.Millisecond
}
