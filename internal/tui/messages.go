package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quaid/total-recall/internal/launcher"
	"github.com/quaid/total-recall/internal/sessions"
)

// Message types for async operations
type (
	// scanCompletedMsg delivers a finished scan snapshot, or the error
	// that prevented it.
	scanCompletedMsg struct {
		Snapshot *sessions.Snapshot
		Err      error
	}

	// fsChangedMsg signals that something under the session root changed
	// on disk since the last scan.
	fsChangedMsg struct{}

	// launchedMsg reports the outcome of a detached spawn.
	launchedMsg struct {
		What string
		Err  error
	}

	// statusMsg replaces the transient status-bar message.
	statusMsg string

	// TickMsg is sent periodically for spinner animation
	TickMsg time.Time
)

// scanCmd runs one full scan off the event loop. The model guarantees at
// most one of these is in flight at a time.
func scanCmd(ctx context.Context, store *sessions.Store) tea.Cmd {
	return func() tea.Msg {
		snap, err := store.Scan(ctx)
		return scanCompletedMsg{Snapshot: snap, Err: err}
	}
}

// waitForFSChange re-arms after every received event; the watcher side
// coalesces bursts.
func waitForFSChange(events <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return fsChangedMsg{}
	}
}

// launchCmd executes a launch effect without blocking the event loop.
func launchCmd(what string, spec launcher.LaunchSpec) tea.Cmd {
	return func() tea.Msg {
		return launchedMsg{What: what, Err: launcher.Launch(spec)}
	}
}

// openGitHubCmd resolves the project's origin remote to a browser URL and
// opens it.
func openGitHubCmd(projectPath string) tea.Cmd {
	return func() tea.Msg {
		remote, err := launcher.GitRemoteURL(projectPath)
		if err != nil {
			return statusMsg(err.Error())
		}
		url, ok := launcher.GitHubURL(remote)
		if !ok {
			return statusMsg("could not parse git remote URL: " + remote)
		}
		if err := launcher.LaunchBrowser(url); err != nil {
			return statusMsg(err.Error())
		}
		return statusMsg("Opened " + url)
	}
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
