package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/quaid/total-recall/internal/launcher"
	"github.com/quaid/total-recall/pkg/models"
)

// Action is a user intent decoded from a key event.
type Action int

const (
	ActionCopyResume Action = iota
	ActionResume
	ActionNewSession
	ActionOpenLazygit
	ActionOpenTerminal
	ActionOpenEditor
	ActionOpenGitHub
)

// EffectKind tags the closed set of dispatcher outcomes.
type EffectKind int

const (
	EffectNoOp EffectKind = iota
	EffectCopyText
	EffectLaunchResume
	EffectLaunchNewSession
	EffectLaunchTool
	EffectOpenGitHub
)

// Effect is what an action resolves to. The dispatcher never performs I/O;
// the event loop executes effects.
type Effect struct {
	Kind        EffectKind
	Text        string // clipboard payload for EffectCopyText
	Spec        launcher.LaunchSpec
	ProjectPath string // for EffectOpenGitHub
}

// DispatchContext is everything the dispatcher may read: the current
// selection plus the already-resolved configuration values. Now is passed
// in so dispatch stays a pure function.
type DispatchContext struct {
	Project         *models.Project
	Session         *models.Session
	SkipPermissions bool
	Editor          string
	Now             time.Time
}

// Dispatch maps an action against the current selection to an effect.
// Actions that need a selection the user doesn't have resolve to NoOp.
func Dispatch(ctx DispatchContext, action Action) Effect {
	switch action {
	case ActionCopyResume:
		if ctx.Session == nil {
			return Effect{Kind: EffectNoOp}
		}
		text := ctx.Session.ResumeCommand()
		if ctx.SkipPermissions {
			text = "claude --dangerously-skip-permissions --resume " + ctx.Session.ID
		}
		return Effect{Kind: EffectCopyText, Text: text}

	case ActionResume:
		if ctx.Session == nil {
			return Effect{Kind: EffectNoOp}
		}
		return Effect{
			Kind: EffectLaunchResume,
			Spec: launcher.LaunchSpec{
				MultiplexerSession: launcher.SessionName(ctx.Session.ProjectPath, ctx.Session.ID),
				WorkDir:            ctx.Session.ProjectPath,
				Command:            launcher.ResumeCommand(ctx.Session.ID, ctx.SkipPermissions),
				StatusText:         statusText(ctx.Session.ProjectPath, ctx.Session.ID),
			},
		}

	case ActionNewSession:
		if ctx.Project == nil {
			return Effect{Kind: EffectNoOp}
		}
		return Effect{
			Kind: EffectLaunchNewSession,
			Spec: launcher.LaunchSpec{
				MultiplexerSession: launcher.NewSessionName(ctx.Project.Path, ctx.Now),
				WorkDir:            ctx.Project.Path,
				Command:            launcher.NewSessionCommand(ctx.SkipPermissions),
				StatusText:         statusText(ctx.Project.Path, ""),
			},
		}

	case ActionOpenLazygit:
		return toolEffect(ctx, "lazygit")

	case ActionOpenTerminal:
		return toolEffect(ctx, "")

	case ActionOpenEditor:
		editor := ctx.Editor
		if editor == "" {
			editor = "vim"
		}
		return toolEffect(ctx, editor)

	case ActionOpenGitHub:
		if ctx.Project == nil {
			return Effect{Kind: EffectNoOp}
		}
		return Effect{Kind: EffectOpenGitHub, ProjectPath: ctx.Project.Path}
	}

	return Effect{Kind: EffectNoOp}
}

// toolEffect launches a project-scoped tool in a fresh tmux session; an
// empty command means a bare shell.
func toolEffect(ctx DispatchContext, command string) Effect {
	if ctx.Project == nil {
		return Effect{Kind: EffectNoOp}
	}
	return Effect{
		Kind: EffectLaunchTool,
		Spec: launcher.LaunchSpec{
			MultiplexerSession: launcher.NewSessionName(ctx.Project.Path, ctx.Now),
			WorkDir:            ctx.Project.Path,
			Command:            command,
			StatusText:         statusText(ctx.Project.Path, ""),
		},
	}
}

// statusText builds the tmux status-line label: "[project] sid8".
func statusText(projectPath, sessionID string) string {
	name := filepath.Base(projectPath)
	if sessionID == "" {
		return fmt.Sprintf("[%s]", name)
	}
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}
	return fmt.Sprintf("[%s] %s", name, sessionID)
}
