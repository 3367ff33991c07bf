// Package launcher builds and spawns detached terminal-emulator processes
// that wrap commands in reattachable tmux sessions.
package launcher

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"al.essio.dev/pkg/shellescape"
)

// DefaultEmulator is the terminal emulator spawned for launch actions.
const DefaultEmulator = "ghostty"

// LaunchSpec fully describes one terminal spawn. It is constructed fresh
// per action and never persisted.
type LaunchSpec struct {
	Emulator           string
	MultiplexerSession string
	WorkDir            string
	Command            string // inner shell command; empty means a plain shell
	StatusText         string // tmux status-left content
}

// LaunchError reports a failed spawn. Launch failures are shown in the
// status bar; they never terminate the TUI.
type LaunchError struct {
	Emulator string
	NotFound bool
	Err      error
}

func (e *LaunchError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("terminal emulator not found: %s", e.Emulator)
	}
	return fmt.Sprintf("failed to spawn %s: %v", e.Emulator, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// SessionName derives the tmux session name for resuming a recorded
// session. The name is a pure function of the project and session ID, so
// resuming the same session twice reattaches instead of duplicating.
func SessionName(projectPath, sessionID string) string {
	base := filepath.Base(projectPath)
	if base == "." || base == "/" || base == "" {
		base = "session"
	}
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}
	return fmt.Sprintf("tr-%s-%s", base, sessionID)
}

// NewSessionName derives a tmux session name for a brand-new conversation.
// The timestamp keeps concurrent new sessions in one project distinct.
func NewSessionName(projectPath string, now time.Time) string {
	base := filepath.Base(projectPath)
	if base == "." || base == "/" || base == "" {
		base = "session"
	}
	return fmt.Sprintf("tr-%s-%d", base, now.Unix())
}

// ResumeCommand builds the inner shell command that continues a session
// and keeps the window open afterwards so errors stay readable.
func ResumeCommand(sessionID string, skipPermissions bool) string {
	cmd := "claude"
	if skipPermissions {
		cmd += " --dangerously-skip-permissions"
	}
	return fmt.Sprintf("%s --resume %s; echo; echo Press Enter to close...; read", cmd, shellescape.Quote(sessionID))
}

// NewSessionCommand builds the inner shell command for a fresh session.
func NewSessionCommand(skipPermissions bool) string {
	cmd := "claude"
	if skipPermissions {
		cmd += " --dangerously-skip-permissions"
	}
	return cmd + "; echo; echo Press Enter to close...; read"
}

// Args builds the emulator argument list for the spec.
//
// The emulator is always started as a fresh process. Ghostty's
// single-instance IPC path (+new-window) silently drops -e and the working
// directory, so routing through it would open a window running the default
// shell in the wrong directory. A plain spawn honors every flag.
//
// The inner command goes through `tmux new-session -A`, which attaches when
// the named session already exists and creates it otherwise.
func (s LaunchSpec) Args() []string {
	args := []string{
		"-e",
		"tmux", "new-session", "-A",
		"-s", s.MultiplexerSession,
		"-c", s.WorkDir,
	}
	if s.Command != "" {
		args = append(args, s.Command)
	}
	if s.StatusText != "" {
		args = append(args, statusArgs(s.StatusText)...)
	}
	return args
}

// statusArgs configures a minimal tmux status line identifying the session.
func statusArgs(statusText string) []string {
	return []string{
		";", "set", "status", "on",
		";", "set", "status-position", "top",
		";", "set", "status-style", "bg=blue,fg=white,bold",
		";", "set", "status-left-length", "100",
		";", "set", "status-left", fmt.Sprintf(" %s ", statusText),
		";", "set", "status-right", "",
		";", "set", "window-status-format", "",
		";", "set", "window-status-current-format", "",
	}
}

// Launch starts the terminal emulator described by the spec, detached from
// the TUI process. The child is released immediately: no supervision, no
// exit-code collection.
func Launch(spec LaunchSpec) error {
	emulator := spec.Emulator
	if emulator == "" {
		emulator = DefaultEmulator
	}

	path, err := exec.LookPath(emulator)
	if err != nil {
		return &LaunchError{Emulator: emulator, NotFound: true, Err: err}
	}

	cmd := exec.Command(path, spec.Args()...)
	if err := spawnDetached(cmd); err != nil {
		return &LaunchError{Emulator: emulator, Err: err}
	}
	return nil
}

// LaunchBrowser opens a URL with the desktop opener, detached.
func LaunchBrowser(url string) error {
	path, err := exec.LookPath("xdg-open")
	if err != nil {
		return &LaunchError{Emulator: "xdg-open", NotFound: true, Err: err}
	}
	cmd := exec.Command(path, url)
	if err := spawnDetached(cmd); err != nil {
		return &LaunchError{Emulator: "xdg-open", Err: err}
	}
	return nil
}

// spawnDetached starts cmd in its own session so it survives the TUI's
// terminal closing, with stdio pointed at /dev/null.
func spawnDetached(cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
