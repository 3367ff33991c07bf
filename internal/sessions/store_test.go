package sessions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeSessionFile(t *testing.T, dir, sessionID string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, sessionID+".jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func entry(kind, ts, cwd, text string) string {
	return fmt.Sprintf(`{"type":%q,"timestamp":%q,"cwd":%q,"message":{"role":%q,"content":%q}}`,
		kind, ts, cwd, kind, text)
}

// TestScanCountsValidAndSkippedLines tests the lenient per-line parse:
// a malformed line is counted and skipped, never fatal
func TestScanCountsValidAndSkippedLines(t *testing.T) {
	root := t.TempDir()
	projDir := filepath.Join(root, "-home-doug-myapp")
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeSessionFile(t, projDir, "11111111-aaaa-bbbb-cccc-000000000001",
		entry("user", "2025-06-01T10:00:00Z", "/home/doug/myapp", "first question"),
		entry("assistant", "2025-06-01T10:00:05Z", "/home/doug/myapp", "first answer"),
		`{"type":"user","timestamp":"2025-06-01T10`, // truncated mid-write
		entry("user", "2025-06-01T10:01:00Z", "/home/doug/myapp", "second question"),
		entry("assistant", "2025-06-01T10:01:30Z", "/home/doug/myapp", "second answer"),
	)

	store := NewStore(Options{Root: root, ShowAgentSessions: true})
	snap, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(snap.Projects) != 1 {
		t.Fatalf("Expected 1 project, got %d", len(snap.Projects))
	}
	project := snap.Projects[0]
	if len(project.Sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(project.Sessions))
	}

	session := project.Sessions[0]
	if session.MessageCount != 4 {
		t.Errorf("Expected 4 counted messages, got %d", session.MessageCount)
	}
	if session.SkippedLines != 1 {
		t.Errorf("Expected 1 skipped line, got %d", session.SkippedLines)
	}
	if session.ID != "11111111-aaaa-bbbb-cccc-000000000001" {
		t.Errorf("Session ID should come from the file name, got %q", session.ID)
	}
	if session.ProjectPath != "/home/doug/myapp" {
		t.Errorf("Unexpected project path %q", session.ProjectPath)
	}
	wantPreview := "first answer\nsecond question\nsecond answer"
	if session.Preview != wantPreview {
		t.Errorf("Preview should hold the last textual messages, got %q", session.Preview)
	}
	if !session.LastMessage.After(session.FirstMessage) {
		t.Error("Timestamp range not absorbed")
	}
}

// TestScanOrdersByRecency tests project and session ordering
func TestScanOrdersByRecency(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "-home-doug-old")
	newDir := filepath.Join(root, "-home-doug-new")
	for _, dir := range []string{oldDir, newDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	writeSessionFile(t, oldDir, "11111111-aaaa-bbbb-cccc-000000000001",
		entry("user", "2025-01-01T10:00:00Z", "/home/doug/old", "old work"))
	writeSessionFile(t, newDir, "22222222-aaaa-bbbb-cccc-000000000002",
		entry("user", "2025-06-01T10:00:00Z", "/home/doug/new", "recent work"))
	writeSessionFile(t, newDir, "33333333-aaaa-bbbb-cccc-000000000003",
		entry("user", "2025-06-02T10:00:00Z", "/home/doug/new", "newest work"))

	store := NewStore(Options{Root: root, ShowAgentSessions: true})
	snap, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(snap.Projects) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(snap.Projects))
	}
	if snap.Projects[0].Name != "new" {
		t.Errorf("Most recently active project should sort first, got %q", snap.Projects[0].Name)
	}
	sessions := snap.Projects[0].Sessions
	if len(sessions) != 2 || !sessions[0].LastMessage.After(sessions[1].LastMessage) {
		t.Error("Sessions should sort newest first")
	}
}

// TestScanListsEmptyProjects tests that a project directory with no valid
// session files still appears
func TestScanListsEmptyProjects(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "-home-doug-empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	store := NewStore(Options{Root: root})
	snap, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(snap.Projects) != 1 {
		t.Fatalf("Expected the empty project listed, got %d projects", len(snap.Projects))
	}
	if snap.Projects[0].SessionCount != 0 {
		t.Errorf("Expected 0 sessions, got %d", snap.Projects[0].SessionCount)
	}
}

// TestScanIgnoresStrayFiles tests that non-directories under the root and
// non-jsonl files inside projects are skipped
func TestScanIgnoresStrayFiles(t *testing.T) {
	root := t.TempDir()
	projDir := filepath.Join(root, "-home-doug-myapp")
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(projDir, "notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeSessionFile(t, projDir, "11111111-aaaa-bbbb-cccc-000000000001",
		entry("user", "2025-06-01T10:00:00Z", "/home/doug/myapp", "hi"))

	store := NewStore(Options{Root: root, ShowAgentSessions: true})
	snap, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(snap.Projects) != 1 || len(snap.Projects[0].Sessions) != 1 {
		t.Error("Stray files should not produce projects or sessions")
	}
}

// TestScanEmptySessionFileStillListed tests the zero-byte session edge case
func TestScanEmptySessionFileStillListed(t *testing.T) {
	root := t.TempDir()
	projDir := filepath.Join(root, "-home-doug-myapp")
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSessionFile(t, projDir, "11111111-aaaa-bbbb-cccc-000000000001")

	store := NewStore(Options{Root: root, ShowAgentSessions: true})
	snap, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(snap.Projects) != 1 || len(snap.Projects[0].Sessions) != 1 {
		t.Fatal("Empty session file should still be listed")
	}
	session := snap.Projects[0].Sessions[0]
	if session.MessageCount != 0 || !session.LastMessage.IsZero() {
		t.Error("Empty session should have no messages and no timestamps")
	}
}

// TestScanFiltersAgentSessions tests the agent-session toggle
func TestScanFiltersAgentSessions(t *testing.T) {
	root := t.TempDir()
	projDir := filepath.Join(root, "-home-doug-myapp")
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSessionFile(t, projDir, "11111111-aaaa-bbbb-cccc-000000000001",
		entry("user", "2025-06-01T10:00:00Z", "/home/doug/myapp", "main work"))
	writeSessionFile(t, projDir, "22222222-aaaa-bbbb-cccc-000000000002",
		`{"type":"user","timestamp":"2025-06-01T11:00:00Z","cwd":"/home/doug/myapp","isSidechain":true,"agentId":"ag1","message":{"role":"user","content":"agent task"}}`)

	store := NewStore(Options{Root: root, ShowAgentSessions: false})
	snap, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := snap.Projects[0].SessionCount; got != 1 {
		t.Errorf("Expected agent session filtered out, got %d sessions", got)
	}

	store = NewStore(Options{Root: root, ShowAgentSessions: true})
	snap, err = store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := snap.Projects[0].SessionCount; got != 2 {
		t.Errorf("Expected both sessions shown, got %d", got)
	}
}

// TestScanMissingRoot tests the root-level error classification
func TestScanMissingRoot(t *testing.T) {
	store := NewStore(Options{Root: filepath.Join(t.TempDir(), "does-not-exist")})

	_, err := store.Scan(context.Background())
	if err == nil {
		t.Fatal("Expected an error for a missing root")
	}
	scanErr, ok := err.(*ScanError)
	if !ok {
		t.Fatalf("Expected *ScanError, got %T", err)
	}
	if scanErr.Kind != RootNotFound {
		t.Errorf("Expected RootNotFound, got %v", scanErr.Kind)
	}
}

// TestSnapshotCaching tests that Snapshot returns the last scan unchanged
func TestSnapshotCaching(t *testing.T) {
	root := t.TempDir()
	store := NewStore(Options{Root: root})

	if store.Snapshot() != nil {
		t.Error("Snapshot should be nil before the first scan")
	}

	first, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if store.Snapshot() != first {
		t.Error("Snapshot should return the cached scan result")
	}

	second, err := store.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if first.Generation == second.Generation {
		t.Error("Each scan should get a fresh generation ID")
	}
	if store.Snapshot() != second {
		t.Error("Snapshot should follow the latest scan")
	}
}
