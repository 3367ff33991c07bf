package sessions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quaid/total-recall/pkg/models"
)

// ScanErrorKind classifies root-level scan failures. Anything confined to a
// single project or session downgrades to a Warning instead.
type ScanErrorKind int

const (
	RootNotFound ScanErrorKind = iota
	RootNotReadable
	PermissionDenied
)

// ScanError is a failure that prevents browsing the session root at all.
type ScanError struct {
	Kind ScanErrorKind
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	switch e.Kind {
	case RootNotFound:
		return fmt.Sprintf("session root not found: %s", e.Path)
	case RootNotReadable:
		return fmt.Sprintf("session root not readable: %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("permission denied: %s: %v", e.Path, e.Err)
	}
}

func (e *ScanError) Unwrap() error { return e.Err }

// Warning records a per-project or per-session failure that was skipped
// during a scan.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Snapshot is one complete, immutable scan generation. The navigation layer
// only ever sees whole snapshots, never partially-updated state.
type Snapshot struct {
	Generation string
	ScannedAt  time.Time
	Projects   []models.Project
	Warnings   []Warning
}

// TotalSessions returns the session count across all projects.
func (s *Snapshot) TotalSessions() int {
	n := 0
	for i := range s.Projects {
		n += s.Projects[i].SessionCount
	}
	return n
}

// AgentFilter decides whether a session counts as an agent sub-session.
// The exact on-disk convention has shifted across claude versions, so the
// rule is pluggable rather than baked into the scanner.
type AgentFilter func(*models.Session) bool

// DefaultAgentFilter flags sidechain entries and sessions with an agent ID.
func DefaultAgentFilter(s *models.Session) bool {
	return s.IsAgent || s.AgentID != ""
}

// Options configures a Store. Root is the projects directory, e.g.
// ~/.claude/projects.
type Options struct {
	Root              string
	ShowAgentSessions bool
	PreviewLines      int // textual messages kept in each session preview
	IsAgent           AgentFilter
}

// Store discovers session logs under the root and caches the latest scan.
type Store struct {
	opts Options

	mu   sync.RWMutex
	snap *Snapshot
	sig  string
}

// NewStore creates a Store over the given session root.
func NewStore(opts Options) *Store {
	if opts.IsAgent == nil {
		opts.IsAgent = DefaultAgentFilter
	}
	return &Store{opts: opts}
}

// Root returns the session root directory the store scans.
func (s *Store) Root() string { return s.opts.Root }

// Snapshot returns the most recent scan result, or nil before the first
// scan. Callers that want fresh data call Scan explicitly.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Stale reports whether the directory modification signature has changed
// since the cached snapshot was taken.
func (s *Store) Stale() bool {
	s.mu.RLock()
	snap, sig := s.snap, s.sig
	s.mu.RUnlock()
	if snap == nil {
		return true
	}
	return sig != s.signature()
}

// Scan walks the session root and atomically replaces the cached snapshot.
// The walk covers exactly two levels: project directories under the root,
// and .jsonl session files inside each project directory.
func (s *Store) Scan(ctx context.Context) (*Snapshot, error) {
	sig := s.signature()

	entries, err := os.ReadDir(s.opts.Root)
	if err != nil {
		return nil, classifyRootErr(s.opts.Root, err)
	}

	snap := &Snapshot{
		Generation: uuid.New().String(),
		ScannedAt:  time.Now(),
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(s.opts.Root, entry.Name())
		project, warns := s.scanProject(ctx, entry.Name(), dirPath)
		snap.Warnings = append(snap.Warnings, warns...)
		if project != nil {
			snap.Projects = append(snap.Projects, *project)
		}
	}

	sortProjects(snap.Projects)

	s.mu.Lock()
	s.snap = snap
	s.sig = sig
	s.mu.Unlock()
	return snap, nil
}

// scanProject summarizes every session file in one project directory.
// Failures stay local: an unreadable directory or file becomes a warning,
// never a scan abort, so one broken project cannot block the rest.
func (s *Store) scanProject(ctx context.Context, encoded, dirPath string) (*models.Project, []Warning) {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, []Warning{{Path: dirPath, Err: err}}
	}

	var warnings []Warning
	var sessionList []models.Session
	for _, file := range files {
		if ctx.Err() != nil {
			return nil, warnings
		}
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".jsonl") {
			continue
		}
		if info, err := file.Info(); err != nil || !info.Mode().IsRegular() {
			continue
		}

		path := filepath.Join(dirPath, file.Name())
		session, err := summarizeSession(path, s.opts.PreviewLines)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Err: err})
			continue
		}
		if !s.opts.ShowAgentSessions && s.opts.IsAgent(session) {
			continue
		}
		sessionList = append(sessionList, *session)
	}

	sort.SliceStable(sessionList, func(i, j int) bool {
		return sessionList[i].LastMessage.After(sessionList[j].LastMessage)
	})

	decoded := DecodeProjectPath(encoded)
	project := &models.Project{
		EncodedPath:  encoded,
		Path:         decoded,
		Name:         ProjectDisplayName(decoded),
		SessionCount: len(sessionList),
		Sessions:     sessionList,
	}
	for i := range sessionList {
		project.TotalMessages += sessionList[i].MessageCount
		if sessionList[i].LastMessage.After(project.LastActivity) {
			project.LastActivity = sessionList[i].LastMessage
		}
	}
	return project, warnings
}

// sortProjects orders by last activity, newest first, with path as the
// stable tiebreak.
func sortProjects(projects []models.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].LastActivity.Equal(projects[j].LastActivity) {
			return projects[i].LastActivity.After(projects[j].LastActivity)
		}
		return projects[i].Path < projects[j].Path
	})
}

// signature is a cheap staleness check: the mtimes of the root and its
// immediate project directories.
func (s *Store) signature() string {
	var b strings.Builder
	info, err := os.Stat(s.opts.Root)
	if err != nil {
		return "unreadable"
	}
	fmt.Fprintf(&b, "%s=%d;", s.opts.Root, info.ModTime().UnixNano())

	entries, err := os.ReadDir(s.opts.Root)
	if err != nil {
		return b.String()
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if info, err := entry.Info(); err == nil {
			fmt.Fprintf(&b, "%s=%d;", entry.Name(), info.ModTime().UnixNano())
		}
	}
	return b.String()
}

func classifyRootErr(root string, err error) *ScanError {
	switch {
	case os.IsNotExist(err):
		return &ScanError{Kind: RootNotFound, Path: root, Err: err}
	case os.IsPermission(err):
		return &ScanError{Kind: PermissionDenied, Path: root, Err: err}
	default:
		return &ScanError{Kind: RootNotReadable, Path: root, Err: err}
	}
}
