package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/reeldeck/reeldeck-agent/internal/api"
	"github.com/reeldeck/reeldeck-agent/internal/backend"
	"github.com/reeldeck/reeldeck-agent/internal/config"
	"github.com/reeldeck/reeldeck-agent/internal/genai"
	"github.com/reeldeck/reeldeck-agent/internal/logging"
	"github.com/reeldeck/reeldeck-agent/internal/media"
	"github.com/reeldeck/reeldeck-agent/internal/preview"
	"github.com/reeldeck/reeldeck-agent/internal/session"
	"github.com/reeldeck/reeldeck-agent/internal/ui"
)

var (
	_ session.HighlightService = (*genai.Client)(nil)
	_ session.JobService       = (*backend.Client)(nil)
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting reeldeck agent",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"demo_mode", cfg.DemoMode(),
	)

	if cfg.GeminiAPIKey() == "" {
		logger.Warn("GEMINI_API_KEY not set, AI analysis will fall back to sample data")
	} else {
		logger.Info("gemini configured",
			"model", cfg.GeminiModel(),
			"key", logging.SanitizeKey(cfg.GeminiAPIKey()),
		)
	}

	dashboardURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port())

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                   REELDECK AGENT " + config.Version + "                    ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Dashboard:  %-45s ║\n", dashboardURL)
	fmt.Printf("║  Backend:    %-45s ║\n", cfg.BackendURL())
	fmt.Printf("║  Demo Mode:  %-45v ║\n", cfg.DemoMode())
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	aiClient := genai.NewClient(cfg.GeminiBaseURL(), cfg.GeminiAPIKey(), cfg.GeminiModel(),
		logging.WithComponent(logger, "genai"))
	backendClient := backend.NewClient(logging.WithComponent(logger, "backend"))

	store, err := media.NewStore(cfg.UploadsDir(), logging.WithComponent(logger, "media"))
	if err != nil {
		return fmt.Errorf("failed to initialize media store: %w", err)
	}

	manager := session.NewManager(session.Config{
		Highlights:     aiClient,
		Jobs:           backendClient,
		Logger:         logging.WithComponent(logger, "session"),
		BackendURL:     cfg.BackendURL(),
		DemoMode:       cfg.DemoMode(),
		SampleVideoURL: cfg.SampleVideoURL(),
		AnalyzeDelay:   cfg.AnalyzeDelay(),
		ReframeDelay:   cfg.ReframeDelay(),
		PollInterval:   cfg.PollInterval(),
	})
	defer manager.Shutdown()

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		Sessions:  manager,
		Player:    preview.NewPlayer(),
		Media:     store,
		Logger:    logging.WithComponent(logger, "api"),
		StartTime: startTime,
		Version:   config.Version,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Sessions: manager,
			Logger:   logging.WithComponent(logger, "ui"),
			OnOpenDashboard: func() error {
				return openBrowser(dashboardURL)
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
