package launcher

import (
	"strings"
	"testing"
	"time"
)

// TestSessionNameIsIdempotent tests that the same project/session pair
// always maps to the same tmux session name
func TestSessionNameIsIdempotent(t *testing.T) {
	a := SessionName("/home/doug/myapp", "0b5a0a53-9c62-4e43-8e9a-6a5a32f3f2c1")
	b := SessionName("/home/doug/myapp", "0b5a0a53-9c62-4e43-8e9a-6a5a32f3f2c1")
	if a != b {
		t.Errorf("Session names differ: %q vs %q", a, b)
	}
	if a != "tr-myapp-0b5a0a53" {
		t.Errorf("Unexpected session name %q", a)
	}
}

// TestSessionNameDegenerate tests the fallback for unusable project paths
func TestSessionNameDegenerate(t *testing.T) {
	got := SessionName("", "0b5a0a53-9c62")
	if !strings.HasPrefix(got, "tr-session-") {
		t.Errorf("Expected session fallback base, got %q", got)
	}
}

// TestNewSessionNameDistinct tests that new sessions never collide with
// resume names and differ across time
func TestNewSessionNameDistinct(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := NewSessionName("/home/doug/myapp", now)
	second := NewSessionName("/home/doug/myapp", now.Add(time.Second))
	if first == second {
		t.Error("New session names should differ across time")
	}
	if first != "tr-myapp-1748779200" {
		t.Errorf("Unexpected new session name %q", first)
	}
}

// TestResumeCommand tests the inner shell command construction
func TestResumeCommand(t *testing.T) {
	got := ResumeCommand("abc-123", false)
	want := "claude --resume abc-123; echo; echo Press Enter to close...; read"
	if got != want {
		t.Errorf("ResumeCommand = %q, want %q", got, want)
	}

	got = ResumeCommand("abc-123", true)
	if !strings.Contains(got, "--dangerously-skip-permissions") {
		t.Errorf("Expected skip-permissions flag in %q", got)
	}
}

// TestResumeCommandEscapesSessionID tests shell quoting of untrusted input
func TestResumeCommandEscapesSessionID(t *testing.T) {
	got := ResumeCommand("evil; rm -rf /", false)
	if strings.Contains(got, "--resume evil; rm") {
		t.Errorf("Session ID not quoted: %q", got)
	}
	if !strings.Contains(got, "'evil; rm -rf /'") {
		t.Errorf("Expected single-quoted session ID in %q", got)
	}
}

// TestArgsConstruction tests the emulator argument list
func TestArgsConstruction(t *testing.T) {
	spec := LaunchSpec{
		MultiplexerSession: "tr-myapp-0b5a0a53",
		WorkDir:            "/home/doug/myapp",
		Command:            "claude --resume x; read",
	}

	args := spec.Args()
	want := []string{"-e", "tmux", "new-session", "-A", "-s", "tr-myapp-0b5a0a53", "-c", "/home/doug/myapp", "claude --resume x; read"}
	if len(args) < len(want) {
		t.Fatalf("Args too short: %v", args)
	}
	for i, w := range want {
		if args[i] != w {
			t.Errorf("Args[%d] = %q, want %q", i, args[i], w)
		}
	}
}

// TestArgsPlainShell tests that an empty command yields a bare tmux shell
func TestArgsPlainShell(t *testing.T) {
	spec := LaunchSpec{MultiplexerSession: "tr-x-1", WorkDir: "/tmp"}
	args := spec.Args()
	for _, a := range args {
		if strings.Contains(a, "claude") {
			t.Errorf("Unexpected command in args: %v", args)
		}
	}
	if args[len(args)-1] != "/tmp" {
		t.Errorf("Expected workdir last without command or status, got %v", args)
	}
}

// TestArgsStatusLine tests the tmux status-line configuration
func TestArgsStatusLine(t *testing.T) {
	spec := LaunchSpec{
		MultiplexerSession: "tr-x-1",
		WorkDir:            "/tmp",
		StatusText:         "[myapp] 0b5a0a53",
	}
	joined := strings.Join(spec.Args(), " ")
	if !strings.Contains(joined, "; set status on") {
		t.Errorf("Expected status-line setup in %q", joined)
	}
	if !strings.Contains(joined, " [myapp] 0b5a0a53 ") {
		t.Errorf("Expected status text in %q", joined)
	}
}

// TestGitHubURL tests remote-to-browser URL conversion
func TestGitHubURL(t *testing.T) {
	cases := []struct {
		remote string
		want   string
		ok     bool
	}{
		{"git@github.com:doug/myapp.git", "https://github.com/doug/myapp", true},
		{"https://github.com/doug/myapp.git", "https://github.com/doug/myapp", true},
		{"https://github.com/doug/myapp", "https://github.com/doug/myapp", true},
		{"https://gitlab.com/doug/myapp.git", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := GitHubURL(c.remote)
		if got != c.want || ok != c.ok {
			t.Errorf("GitHubURL(%q) = (%q, %v), want (%q, %v)", c.remote, got, ok, c.want, c.ok)
		}
	}
}
