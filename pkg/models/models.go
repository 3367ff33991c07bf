package models

import (
	"fmt"
	"time"
)

// Session is the summary of one recorded Claude Code conversation,
// built from a single JSONL log file during a scan. It is immutable for
// the lifetime of the scan generation that produced it.
type Session struct {
	// ID is the session UUID, taken from the log file name. Claude uses
	// the file name to locate sessions; the sessionId field inside
	// entries can differ (agent sessions carry their parent's ID).
	ID          string
	ProjectPath string // decoded project path, e.g. "/home/doug/projects/myapp"
	Slug        string // human-readable slug, e.g. "twinkly-singing-nova"
	GitBranch   string // branch recorded at session start, if any

	FirstMessage time.Time
	LastMessage  time.Time

	MessageCount int
	SkippedLines int    // malformed JSONL lines excluded from the summary
	Preview      string // last textual messages, sanitized, newline-joined

	FilePath string
	FileSize int64

	IsAgent bool // sidechain/agent sub-session; not independently resumable
	AgentID string
}

// DisplayName returns the best human-readable label for the session.
func (s *Session) DisplayName() string {
	if s.Slug != "" {
		return s.Slug
	}
	if s.AgentID != "" {
		return "agent-" + s.AgentID
	}
	if len(s.ID) > 8 {
		return s.ID[:8]
	}
	return s.ID
}

// ResumeCommand returns the command that continues this conversation.
func (s *Session) ResumeCommand() string {
	return "claude --resume " + s.ID
}

// Duration returns the elapsed time between the first and last message.
func (s *Session) Duration() time.Duration {
	return s.LastMessage.Sub(s.FirstMessage)
}

// DurationString formats the session duration as "2h 15m", "42m", or "< 1m".
func (s *Session) DurationString() string {
	d := s.Duration()
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "< 1m"
	}
}

// Project groups the sessions recorded under one encoded project directory.
type Project struct {
	EncodedPath   string // directory name, e.g. "-home-doug-projects-myapp"
	Path          string // decoded filesystem path
	Name          string // last path component, for display
	SessionCount  int
	TotalMessages int
	LastActivity  time.Time // max over the project's sessions
	Sessions      []Session // sorted by last activity, newest first
}
