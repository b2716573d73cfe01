// Package ui runs the system tray menu for the agent. The tray mirrors the
// session status and offers shortcuts into the dashboard.
package ui

import (
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
	"github.com/reeldeck/reeldeck-agent/internal/session"
)

type Tray struct {
	sessions *session.Manager
	logger   *slog.Logger

	statusItem *systray.MenuItem

	mu sync.Mutex

	onOpenDashboard func() error
	onQuit          func()
}

type TrayConfig struct {
	Sessions        *session.Manager
	Logger          *slog.Logger
	OnOpenDashboard func() error
	OnQuit          func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		sessions:        cfg.Sessions,
		logger:          cfg.Logger,
		onOpenDashboard: cfg.OnOpenDashboard,
		onQuit:          cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("ReelDeck")
	systray.SetTooltip("ReelDeck Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current session status")
	t.statusItem.Disable()

	systray.AddSeparator()

	openItem := systray.AddMenuItem("Open Dashboard", "Open the dashboard in a browser")
	newItem := systray.AddMenuItem("New Project", "Discard the current session")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit ReelDeck Agent")

	go t.watchSession()

	go func() {
		for {
			select {
			case <-openItem.ClickedCh:
				t.handleOpenDashboard()
			case <-newItem.ClickedCh:
				t.handleNewProject()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

// watchSession keeps the status line in sync with the session manager.
func (t *Tray) watchSession() {
	updates, unsubscribe := t.sessions.Subscribe()
	defer unsubscribe()

	for snap := range updates {
		t.UpdateStatus(statusLabel(snap))
	}
}

func statusLabel(snap session.Snapshot) string {
	label := string(snap.Status)
	if snap.DemoMode {
		label += " (demo)"
	}
	return label
}

func (t *Tray) handleOpenDashboard() {
	if t.onOpenDashboard != nil {
		if err := t.onOpenDashboard(); err != nil {
			t.logger.Error("failed to open dashboard", "error", err)
		}
	}
}

func (t *Tray) handleNewProject() {
	if err := t.sessions.Reset(); err != nil {
		t.logger.Warn("cannot reset session from tray", "error", err)
	}
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.statusItem != nil {
		t.statusItem.SetTitle("Status: " + status)
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}
