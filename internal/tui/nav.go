package tui

import (
	"github.com/quaid/total-recall/pkg/models"
)

// Pane identifies which selection list has input focus.
type Pane int

const (
	PaneProjects Pane = iota
	PaneSessions
)

// Nav is the dual-pane selection state: focused pane plus a cursor into
// each visible list. Scroll offsets are derived from the cursors at render
// time, never stored.
type Nav struct {
	Focus      Pane
	ProjectIdx int
	SessionIdx int
}

// MoveUp decrements the cursor in the focused pane, stopping at 0.
func (n *Nav) MoveUp() {
	switch n.Focus {
	case PaneProjects:
		if n.ProjectIdx > 0 {
			n.ProjectIdx--
			n.SessionIdx = 0
		}
	case PaneSessions:
		if n.SessionIdx > 0 {
			n.SessionIdx--
		}
	}
}

// MoveDown increments the cursor in the focused pane, stopping at the last
// index. No-op on an empty list.
func (n *Nav) MoveDown(nProjects, nSessions int) {
	switch n.Focus {
	case PaneProjects:
		if n.ProjectIdx < nProjects-1 {
			n.ProjectIdx++
			n.SessionIdx = 0
		}
	case PaneSessions:
		if n.SessionIdx < nSessions-1 {
			n.SessionIdx++
		}
	}
}

// FocusSessions moves focus to the session pane. Refused when the focused
// project has no sessions, so the session cursor can never point into an
// empty list.
func (n *Nav) FocusSessions(nSessions int) {
	if nSessions > 0 {
		n.Focus = PaneSessions
	}
}

// FocusProjects moves focus back to the project pane.
func (n *Nav) FocusProjects() {
	n.Focus = PaneProjects
}

// CycleFocus implements Tab: projects -> sessions (when non-empty) ->
// projects.
func (n *Nav) CycleFocus(nSessions int) {
	if n.Focus == PaneProjects {
		n.FocusSessions(nSessions)
	} else {
		n.Focus = PaneProjects
	}
}

// Clamp restores the cursor invariants after the underlying lists change:
// cursors stay inside their lists, and focus falls back to the project
// pane when there is nothing to focus in the session pane.
func (n *Nav) Clamp(nProjects, nSessions int) {
	if nProjects == 0 {
		n.ProjectIdx = 0
		n.SessionIdx = 0
		n.Focus = PaneProjects
		return
	}
	if n.ProjectIdx >= nProjects {
		n.ProjectIdx = nProjects - 1
	}
	if nSessions == 0 {
		n.SessionIdx = 0
		n.Focus = PaneProjects
		return
	}
	if n.SessionIdx >= nSessions {
		n.SessionIdx = nSessions - 1
	}
}

// Reselect re-points the cursors at the entities identified by projectPath
// and sessionID after a rescan, falling back to index 0 when an entity is
// gone from the new snapshot.
func (n *Nav) Reselect(projects []models.Project, projectPath, sessionID string) {
	n.ProjectIdx = 0
	n.SessionIdx = 0
	for i := range projects {
		if projects[i].Path != projectPath {
			continue
		}
		n.ProjectIdx = i
		for j := range projects[i].Sessions {
			if projects[i].Sessions[j].ID == sessionID {
				n.SessionIdx = j
				break
			}
		}
		break
	}
	n.Clamp(len(projects), sessionCount(projects, n.ProjectIdx))
}

func sessionCount(projects []models.Project, idx int) int {
	if idx < 0 || idx >= len(projects) {
		return 0
	}
	return len(projects[idx].Sessions)
}

// scrollOffset returns the smallest offset that keeps cursor inside a
// window of height rows. Recomputed on every render so it can never drift.
func scrollOffset(cursor, height int) int {
	if height <= 0 || cursor < height {
		return 0
	}
	return cursor - height + 1
}
