package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgnsrekt/propdash/internal/config"
	"github.com/dgnsrekt/propdash/internal/smoke"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		slog.Debug("log directory creation failed", "error", err)
	}

	cfg, err := config.LoadSmoke()
	if err != nil {
		slog.Error("Failed to load smoke configuration", "error", err)
		os.Exit(1)
	}

	logWriter := &lumberjack.Logger{
		Filename:   "logs/smoke.log",
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Smoke configuration loaded",
		"dashboard_url", cfg.DashboardURL,
		"cdp_url", cfg.CDPURL(),
		"launch", cfg.Launch,
		"headless", cfg.Headless,
		"tabs", cfg.Tabs,
		"step_timeout_ms", cfg.StepTimeoutMS,
		"report_file", cfg.ReportFile,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := smoke.Run(ctx, cfg, logger)
	if err != nil {
		slog.Error("Smoke walk failed", "error", err)
		os.Exit(1)
	}

	if cfg.ReportFile != "" {
		if err := smoke.WriteReport(cfg.ReportFile, report); err != nil {
			slog.Error("Failed to write smoke report", "path", cfg.ReportFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Smoke report written", "path", cfg.ReportFile)
	}

	slog.Info("Smoke walk complete", "passed", report.Passed, "failed", report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
