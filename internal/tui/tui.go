package tui

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/quaid/total-recall/internal/clipboard"
	"github.com/quaid/total-recall/internal/config"
	"github.com/quaid/total-recall/internal/sessions"
	"github.com/quaid/total-recall/pkg/models"
)

var (
	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("86"))

	blurredBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	agentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	statusKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type model struct {
	store *sessions.Store
	cfg   *config.Config

	snap *sessions.Snapshot
	nav  Nav

	// Project filter ("/" on the project pane).
	filterInput textinput.Model
	filtering   bool
	filterQuery string
	visible     []int // indexes into snap.Projects, filter applied

	preview viewport.Model

	scanning     bool
	rescanQueued bool
	stale        bool

	scanErr error // root-level failure: blocking error screen with retry
	status  string

	indicator      *LoadingIndicator
	fsEvents       <-chan struct{}
	lastStaleCheck time.Time

	width  int
	height int
	ready  bool
}

func newModel(store *sessions.Store, cfg *config.Config, fsEvents <-chan struct{}) model {
	input := textinput.New()
	input.Placeholder = "filter projects"
	input.Prompt = "/ "
	input.CharLimit = 64

	return model{
		store:       store,
		cfg:         cfg,
		filterInput: input,
		indicator:   NewLoadingIndicator("Scanning sessions..."),
		fsEvents:    fsEvents,
		status:      "Loading sessions...",
		scanning:    true, // Init issues the first scan
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{scanCmd(context.Background(), m.store), tickCmd()}
	if m.fsEvents != nil {
		cmds = append(cmds, waitForFSChange(m.fsEvents))
	}
	return tea.Batch(cmds...)
}

func (m *model) startScan() tea.Cmd {
	m.scanning = true
	return scanCmd(context.Background(), m.store)
}

// visibleProjects resolves the filter indexes to the project slice of the
// current snapshot.
func (m *model) visibleProjects() []models.Project {
	if m.snap == nil {
		return nil
	}
	if m.filterQuery == "" {
		return m.snap.Projects
	}
	out := make([]models.Project, 0, len(m.visible))
	for _, idx := range m.visible {
		out = append(out, m.snap.Projects[idx])
	}
	return out
}

func (m *model) selectedProject() *models.Project {
	projects := m.visibleProjects()
	if m.nav.ProjectIdx < 0 || m.nav.ProjectIdx >= len(projects) {
		return nil
	}
	return &projects[m.nav.ProjectIdx]
}

func (m *model) selectedSession() *models.Session {
	project := m.selectedProject()
	if project == nil {
		return nil
	}
	if m.nav.SessionIdx < 0 || m.nav.SessionIdx >= len(project.Sessions) {
		return nil
	}
	return &project.Sessions[m.nav.SessionIdx]
}

// applyFilter recomputes the visible project set from the filter query.
func (m *model) applyFilter() {
	m.visible = m.visible[:0]
	if m.snap == nil {
		return
	}
	if m.filterQuery == "" {
		return
	}
	names := make([]string, len(m.snap.Projects))
	for i := range m.snap.Projects {
		names[i] = m.snap.Projects[i].Name
	}
	for _, match := range fuzzy.Find(m.filterQuery, names) {
		m.visible = append(m.visible, match.Index)
	}
	m.nav.Clamp(len(m.visible), sessionCount(m.visibleProjects(), m.nav.ProjectIdx))
}

func (m *model) dispatchContext() DispatchContext {
	return DispatchContext{
		Project:         m.selectedProject(),
		Session:         m.selectedSession(),
		SkipPermissions: m.cfg.Claude.DangerouslySkipPermissions,
		Editor:          os.Getenv("EDITOR"),
		Now:             time.Now(),
	}
}

// applyEffect executes a dispatcher decision. Clipboard writes are small
// and synchronous; launches go through a command so the loop keeps
// rendering while the emulator starts.
func (m *model) applyEffect(effect Effect) tea.Cmd {
	switch effect.Kind {
	case EffectCopyText:
		if err := clipboard.SetText(effect.Text); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Copied: " + effect.Text
		}
		return nil
	case EffectLaunchResume:
		m.status = "Resuming session..."
		return launchCmd("resume", effect.Spec)
	case EffectLaunchNewSession:
		m.status = "Starting new session..."
		return launchCmd("new session", effect.Spec)
	case EffectLaunchTool:
		m.status = "Launching..."
		return launchCmd("tool", effect.Spec)
	case EffectOpenGitHub:
		return openGitHubCmd(effect.ProjectPath)
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = viewport.New(m.previewWidth(), m.previewHeight())
		m.refreshPreview()
		return m, nil

	case TickMsg:
		if m.scanning {
			m.indicator.Tick()
		} else if m.fsEvents == nil && !m.stale && m.store != nil &&
			time.Time(msg).Sub(m.lastStaleCheck) > 5*time.Second {
			// No watcher; fall back to a cheap mtime poll.
			m.lastStaleCheck = time.Time(msg)
			if m.store.Stale() {
				m.stale = true
			}
		}
		return m, tickCmd()

	case scanCompletedMsg:
		return m.onScanCompleted(msg)

	case fsChangedMsg:
		m.stale = true
		return m, waitForFSChange(m.fsEvents)

	case launchedMsg:
		if msg.Err != nil {
			m.status = errorStyle.Render(msg.Err.Error())
		} else {
			m.status = "Launched " + msg.What
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.onFilterKey(msg)
		}
		return m.onKey(msg)
	}

	return m, nil
}

func (m model) onScanCompleted(msg scanCompletedMsg) (tea.Model, tea.Cmd) {
	m.scanning = false

	if msg.Err != nil {
		m.scanErr = msg.Err
		m.rescanQueued = false
		return m, nil
	}
	m.scanErr = nil

	// Preserve the selection identity across the swap.
	var prevPath, prevID string
	if project := m.selectedProject(); project != nil {
		prevPath = project.Path
	}
	if session := m.selectedSession(); session != nil {
		prevID = session.ID
	}

	m.snap = msg.Snapshot
	m.applyFilter()
	m.nav.Reselect(m.visibleProjects(), prevPath, prevID)
	m.stale = false
	m.refreshPreview()

	m.status = fmt.Sprintf("%d sessions in %d projects", m.snap.TotalSessions(), len(m.snap.Projects))
	if n := len(m.snap.Warnings); n > 0 {
		m.status += fmt.Sprintf(" (%d skipped, see log)", n)
		for _, warning := range m.snap.Warnings {
			log.Printf("scan warning: %s", warning)
		}
	}

	// A rescan requested mid-scan runs exactly once, now.
	if m.rescanQueued {
		m.rescanQueued = false
		return m, m.startScan()
	}
	return m, nil
}

func (m model) onFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.filterQuery = ""
		m.applyFilter()
		m.refreshPreview()
		return m, nil
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filterQuery = m.filterInput.Value()
	m.applyFilter()
	m.refreshPreview()
	return m, cmd
}

func (m model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The blocking error screen only answers retry and quit.
	if m.scanErr != nil {
		switch msg.String() {
		case "r":
			m.scanErr = nil
			return m, m.startScan()
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	projects := m.visibleProjects()
	nSessions := sessionCount(projects, m.nav.ProjectIdx)

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		m.nav.MoveUp()
		m.refreshPreview()

	case "down", "j":
		m.nav.MoveDown(len(projects), nSessions)
		m.refreshPreview()

	case "left", "h":
		m.nav.FocusProjects()

	case "right", "l":
		m.nav.FocusSessions(nSessions)

	case "tab":
		m.nav.CycleFocus(nSessions)

	case "enter":
		if m.nav.Focus == PaneProjects {
			m.nav.FocusSessions(nSessions)
			return m, nil
		}
		return m, m.applyEffect(Dispatch(m.dispatchContext(), ActionResume))

	case "y":
		return m, m.applyEffect(Dispatch(m.dispatchContext(), ActionCopyResume))

	case "n":
		return m, m.applyEffect(Dispatch(m.dispatchContext(), ActionNewSession))

	case "g":
		return m, m.applyEffect(Dispatch(m.dispatchContext(), ActionOpenLazygit))

	case "t":
		return m, m.applyEffect(Dispatch(m.dispatchContext(), ActionOpenTerminal))

	case "e":
		return m, m.applyEffect(Dispatch(m.dispatchContext(), ActionOpenEditor))

	case "o":
		return m, m.applyEffect(Dispatch(m.dispatchContext(), ActionOpenGitHub))

	case "/":
		if m.nav.Focus == PaneProjects {
			m.filtering = true
			m.filterInput.Focus()
			return m, textinput.Blink
		}

	case "r":
		if m.scanning {
			m.rescanQueued = true
			return m, nil
		}
		return m, m.startScan()
	}

	return m, nil
}

// Layout helpers. The terminal is split into a title line, the main panes,
// and a status line; the right column stacks preview over sessions.

func (m *model) mainHeight() int {
	h := m.height - 2 // title + status
	if h < 4 {
		h = 4
	}
	return h
}

func (m *model) projectsWidth() int {
	w := m.width / 4
	if w < 24 {
		w = 24
	}
	return w
}

func (m *model) previewWidth() int {
	w := m.width - m.projectsWidth() - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m *model) previewHeight() int {
	h := m.mainHeight()*3/5 - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m *model) sessionsHeight() int {
	h := m.mainHeight() - (m.previewHeight() + 2) - 2
	if h < 3 {
		h = 3
	}
	return h
}

// refreshPreview re-renders the preview pane for the current selection.
func (m *model) refreshPreview() {
	if !m.ready {
		return
	}
	m.preview.Width = m.previewWidth()
	m.preview.Height = m.previewHeight()
	m.preview.SetContent(m.renderPreviewContent())
}

func (m *model) renderPreviewContent() string {
	session := m.selectedSession()
	if session == nil {
		return dimStyle.Render("No session selected")
	}

	var b strings.Builder
	b.WriteString(selectedStyle.Render(session.DisplayName()))
	if session.GitBranch != "" {
		b.WriteString(dimStyle.Render(" [" + session.GitBranch + "]"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d messages | %s | %s", session.MessageCount, session.DurationString(), humanSize(session.FileSize))
	if session.SkippedLines > 0 {
		fmt.Fprintf(&b, " | %s", dimStyle.Render(fmt.Sprintf("%d malformed lines skipped", session.SkippedLines)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(session.ID))
	b.WriteString("\n\n")
	if session.Preview != "" {
		b.WriteString(lipgloss.NewStyle().Width(m.preview.Width).Render(session.Preview))
	} else {
		b.WriteString(dimStyle.Render("(no preview)"))
	}
	return b.String()
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.scanErr != nil {
		return m.renderErrorScreen()
	}

	if m.snap == nil {
		content := m.indicator.View()
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(content)
	}

	title := m.renderTitle()
	left := m.renderProjectsPane()
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderPreviewPane(), m.renderSessionsPane())
	main := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	status := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, title, main, status)
}

func (m *model) renderTitle() string {
	title := titleStyle.Render(" total-recall ")
	if m.scanning {
		title += " " + m.indicator.View()
	} else if m.stale {
		title += " " + staleStyle.Render("● changes on disk (press r to rescan)")
	}
	return title
}

func (m *model) renderErrorScreen() string {
	var kind string
	if scanErr, ok := m.scanErr.(*sessions.ScanError); ok {
		switch scanErr.Kind {
		case sessions.RootNotFound:
			kind = "The session root does not exist."
		case sessions.PermissionDenied:
			kind = "Permission denied reading the session root."
		default:
			kind = "The session root could not be read."
		}
	}
	content := fmt.Sprintf("%s\n\n%s\n\n%s",
		errorStyle.Render(m.scanErr.Error()),
		kind,
		dimStyle.Render("r retry · q quit"))
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (m *model) renderProjectsPane() string {
	projects := m.visibleProjects()
	height := m.mainHeight() - 2
	innerWidth := m.projectsWidth()

	var rows []string
	if m.filtering || m.filterQuery != "" {
		rows = append(rows, m.filterInput.View())
		height--
	}

	offset := scrollOffset(m.nav.ProjectIdx, height)
	for i := offset; i < len(projects) && i-offset < height; i++ {
		p := projects[i]
		line := fmt.Sprintf("%s %s", p.Name, dimStyle.Render(fmt.Sprintf("(%d)", p.SessionCount)))
		if i == m.nav.ProjectIdx {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows = append(rows, truncate(line, innerWidth))
	}
	if len(projects) == 0 {
		rows = append(rows, dimStyle.Render("  no projects"))
	}

	border := blurredBorderStyle
	if m.nav.Focus == PaneProjects {
		border = focusedBorderStyle
	}
	return border.
		Width(innerWidth).
		Height(m.mainHeight() - 2).
		Render(strings.Join(rows, "\n"))
}

func (m *model) renderPreviewPane() string {
	return blurredBorderStyle.
		Width(m.previewWidth()).
		Height(m.previewHeight()).
		Render(m.preview.View())
}

func (m *model) renderSessionsPane() string {
	project := m.selectedProject()
	height := m.sessionsHeight()
	innerWidth := m.previewWidth()

	var rows []string
	if project != nil {
		offset := scrollOffset(m.nav.SessionIdx, height)
		for i := offset; i < len(project.Sessions) && i-offset < height; i++ {
			s := project.Sessions[i]
			name := s.DisplayName()
			if s.IsAgent {
				name = agentStyle.Render(name)
			}
			line := fmt.Sprintf("%s  %s", name, dimStyle.Render(s.LastMessage.Local().Format(m.cfg.Display.DateFormat)))
			if i == m.nav.SessionIdx && m.nav.Focus == PaneSessions {
				line = selectedStyle.Render("> ") + line
			} else if i == m.nav.SessionIdx {
				line = "* " + line
			} else {
				line = "  " + line
			}
			rows = append(rows, truncate(line, innerWidth))
		}
		if len(project.Sessions) == 0 {
			rows = append(rows, dimStyle.Render("  no sessions"))
		}
	}

	border := blurredBorderStyle
	if m.nav.Focus == PaneSessions {
		border = focusedBorderStyle
	}
	return border.
		Width(innerWidth).
		Height(height).
		Render(strings.Join(rows, "\n"))
}

func (m *model) renderStatusBar() string {
	hints := []string{
		statusKeyStyle.Render("j/k") + statusTextStyle.Render(" nav"),
		statusKeyStyle.Render("enter") + statusTextStyle.Render(" resume"),
		statusKeyStyle.Render("n") + statusTextStyle.Render(" new"),
		statusKeyStyle.Render("y") + statusTextStyle.Render(" copy"),
		statusKeyStyle.Render("r") + statusTextStyle.Render(" rescan"),
		statusKeyStyle.Render("q") + statusTextStyle.Render(" quit"),
	}
	line := " " + statusTextStyle.Render(m.status) + dimStyle.Render(" │ ") + strings.Join(hints, dimStyle.Render(" │ "))
	return truncate(line, m.width)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	// Cheap rune-wise cut; styled segments may lose their reset, which is
	// acceptable for single-line rows.
	runes := []rune(s)
	if len(runes) > width {
		runes = runes[:width]
	}
	return string(runes)
}

// Run starts the browser TUI over the given store and configuration.
// It blocks until the user quits.
func Run(store *sessions.Store, cfg *config.Config, fsEvents <-chan struct{}) error {
	p := tea.NewProgram(newModel(store, cfg, fsEvents), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
