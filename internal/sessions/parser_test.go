package sessions

import (
	"strings"
	"testing"
	"time"
)

// TestParseLineValid tests parsing a typical user entry
func TestParseLineValid(t *testing.T) {
	raw := `{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2025-06-01T12:00:00Z","cwd":"/home/doug/myapp","gitBranch":"main","message":{"role":"user","content":"hello there"}}`

	line, err := ParseLine([]byte(raw))
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if line.Kind() != KindUser {
		t.Errorf("Expected user kind, got %v", line.Kind())
	}
	if line.CWD != "/home/doug/myapp" {
		t.Errorf("Unexpected cwd %q", line.CWD)
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !line.Time().Equal(want) {
		t.Errorf("Unexpected timestamp %v", line.Time())
	}
	if line.MessageText() != "hello there" {
		t.Errorf("Unexpected message text %q", line.MessageText())
	}
}

// TestParseLineStructuredContent tests the content-blocks message form
func TestParseLineStructuredContent(t *testing.T) {
	raw := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"the answer"}]}}`

	line, err := ParseLine([]byte(raw))
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if line.MessageText() != "the answer" {
		t.Errorf("Expected first text block, got %q", line.MessageText())
	}
}

// TestParseLineRejectsMalformed tests that broken lines error rather than
// producing half-parsed entries
func TestParseLineRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		`{"type":"user"`,  // truncated JSON
		`not json at all`, // not JSON
		`{"uuid":"u1"}`,   // no type tag
		`{"type":""}`,     // empty type tag
	} {
		if _, err := ParseLine([]byte(raw)); err == nil {
			t.Errorf("Expected error for %q", raw)
		}
	}
}

// TestParseLineToleratesMissingTimestamp tests that entries without a
// timestamp still parse
func TestParseLineToleratesMissingTimestamp(t *testing.T) {
	line, err := ParseLine([]byte(`{"type":"summary","summary":"did things","leafUuid":"u9"}`))
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if !line.Time().IsZero() {
		t.Error("Expected zero time for a timestamp-less entry")
	}
	if line.Kind() != KindSummary {
		t.Errorf("Expected summary kind, got %v", line.Kind())
	}
	if line.Summary != "did things" {
		t.Errorf("Unexpected summary %q", line.Summary)
	}
}

// TestKindMapping tests the type-tag classification
func TestKindMapping(t *testing.T) {
	cases := map[string]LineKind{
		"user":                  KindUser,
		"assistant":             KindAssistant,
		"tool_use":              KindTool,
		"tool_result":           KindTool,
		"system":                KindSystem,
		"summary":               KindSummary,
		"file-history-snapshot": KindUnknown,
	}
	for tag, want := range cases {
		line := &LogLine{Type: tag}
		if got := line.Kind(); got != want {
			t.Errorf("Kind(%q) = %v, want %v", tag, got, want)
		}
	}
}

// TestSanitizePreview tests control-character stripping and truncation
func TestSanitizePreview(t *testing.T) {
	got := SanitizePreview("line one\nline\ttwo\x1b[0m", 200)
	if got != "line one line two [0m" {
		t.Errorf("Unexpected sanitized preview %q", got)
	}

	long := strings.Repeat("a", 300)
	got = SanitizePreview(long, 200)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected 200-char truncation with ellipsis, got %d chars", len(got))
	}
}
