package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgnsrekt/propdash/internal/api"
	"github.com/dgnsrekt/propdash/internal/config"
	"github.com/dgnsrekt/propdash/internal/documents"
	"github.com/dgnsrekt/propdash/internal/events"
	"github.com/dgnsrekt/propdash/internal/netutil"
	"github.com/dgnsrekt/propdash/internal/router"
	"github.com/dgnsrekt/propdash/internal/session"
	"github.com/dgnsrekt/propdash/internal/web"
	"gopkg.in/natefinch/lumberjack.v2"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.LoadDashboard()
	if err != nil {
		slog.Error("failed to load dashboard config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("dashboard config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"fragment_base_url", cfg.FragmentBaseURL,
		"fetch_timeout_ms", cfg.FetchTimeoutMS,
		"tabs_config", cfg.TabsConfig,
		"session_idle_minutes", cfg.SessionIdleMinutes,
		"max_sessions", cfg.MaxSessions,
		"documents_dir", cfg.DocumentsDir,
		"results_dir", cfg.ResultsDir,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	registry := router.DefaultRegistry()
	if cfg.TabsConfig != "" {
		registry, err = router.LoadRegistry(cfg.TabsConfig)
		if err != nil {
			slog.Error("failed to load tab registry", "path", cfg.TabsConfig, "error", err)
			os.Exit(1)
		}
	}

	fragmentBase := cfg.FragmentBase(bindAddr)
	fetcher, err := router.NewHTTPFetcher(&http.Client{Timeout: cfg.FetchTimeout()}, fragmentBase)
	if err != nil {
		slog.Error("failed to create fragment fetcher", "base_url", fragmentBase, "error", err)
		os.Exit(1)
	}

	broker := events.NewBroker()
	sessions, err := session.NewManager(session.Options{
		Shell:        web.Shell(),
		Registry:     registry,
		Fetcher:      fetcher,
		Broker:       broker,
		MaxSessions:  cfg.MaxSessions,
		SecureCookie: cfg.SecureCookie,
	})
	if err != nil {
		slog.Error("failed to create session manager", "error", err)
		os.Exit(1)
	}

	store, err := documents.NewStore(cfg.ResultsDir)
	if err != nil {
		slog.Error("failed to create results store", "dir", cfg.ResultsDir, "error", err)
		os.Exit(1)
	}
	docs, err := documents.NewService(documents.NewProcessor(cfg.DocumentBatchSize), store, cfg.DocumentsDir)
	if err != nil {
		slog.Error("failed to create document service", "dir", cfg.DocumentsDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go sessions.RunSweeper(ctx, sweepInterval, cfg.SessionIdle())

	h := api.NewServer(api.Deps{
		Sessions:  sessions,
		Documents: docs,
		Broker:    broker,
		Fragments: web.Fragments(),
		Static:    web.Static(),
	})

	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		base := netutil.HTTPBaseURL(bindAddr)
		slog.Info("dashboard listening", "addr", bindAddr, "url", base+"/", "docs", base+"/docs", "fragments", fragmentBase)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("dashboard server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("dashboard shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
