package systray

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/getlantern/systray"
)

// Manager owns the system tray icon and menu
type Manager struct {
	webPort  int
	iconData []byte
	quit     chan struct{}
	lock     chan struct{}
}

// New creates a new tray manager. webPort is only used for the dashboard
// menu item; pass 0 to hide it.
func New(webPort int, iconData []byte) *Manager {
	return &Manager{
		webPort:  webPort,
		iconData: iconData,
		quit:     make(chan struct{}),
		lock:     make(chan struct{}, 1),
	}
}

// Run starts the system tray (blocking call)
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *Manager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *Manager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// LockRequests returns the channel carrying "Lock now" clicks. Requests
// arriving while a lock is already in flight are coalesced.
func (m *Manager) LockRequests() <-chan struct{} {
	return m.lock
}

// onReady is called when the systray is ready
func (m *Manager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}

	systray.SetTitle("winlock")
	systray.SetTooltip("winlock - hotkey session lock")

	mLockNow := systray.AddMenuItem("Lock now", "Lock the session immediately")
	var mDashboard *systray.MenuItem
	if m.webPort > 0 {
		mDashboard = systray.AddMenuItem("Open dashboard", "Open the winlock dashboard")
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit winlock")

	dashboardClicks := make(chan struct{})
	if mDashboard != nil {
		go func() {
			for range mDashboard.ClickedCh {
				dashboardClicks <- struct{}{}
			}
		}()
	}

	go func() {
		for {
			select {
			case <-mLockNow.ClickedCh:
				select {
				case m.lock <- struct{}{}:
				default:
				}
			case <-dashboardClicks:
				m.openDashboard()
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *Manager) onExit() {
	slog.Info("System tray exited")
}

// openDashboard opens the dashboard in the default browser
func (m *Manager) openDashboard() {
	url := fmt.Sprintf("http://localhost:%d", m.webPort)
	slog.Info("Opening dashboard", "url", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open dashboard", "error", err)
	}
}
