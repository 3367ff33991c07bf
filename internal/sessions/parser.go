package sessions

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LineKind discriminates the entry types found in session log files.
type LineKind string

const (
	KindUser      LineKind = "user"
	KindAssistant LineKind = "assistant"
	KindTool      LineKind = "tool"
	KindSystem    LineKind = "system"
	KindSummary   LineKind = "summary"
	KindUnknown   LineKind = "unknown"
)

// LogLine is one parsed JSONL entry from a session file. Fields are a
// superset across entry types; absent fields are zero-valued. Unknown
// fields in the input are ignored.
type LogLine struct {
	Type        string          `json:"type"`
	UUID        string          `json:"uuid"`
	ParentUUID  string          `json:"parentUuid"`
	SessionID   string          `json:"sessionId"`
	Timestamp   string          `json:"timestamp"`
	CWD         string          `json:"cwd"`
	Slug        string          `json:"slug"`
	GitBranch   string          `json:"gitBranch"`
	Version     string          `json:"version"`
	IsSidechain bool            `json:"isSidechain"`
	AgentID     string          `json:"agentId"`
	Message     json.RawMessage `json:"message"`

	// Summary entry fields
	Summary  string `json:"summary"`
	LeafUUID string `json:"leafUuid"`

	parsedTime time.Time
}

// Kind maps the raw type tag onto the closed set of line kinds.
func (l *LogLine) Kind() LineKind {
	switch l.Type {
	case "user":
		return KindUser
	case "assistant":
		return KindAssistant
	case "tool", "tool_use", "tool_result":
		return KindTool
	case "system":
		return KindSystem
	case "summary":
		return KindSummary
	default:
		return KindUnknown
	}
}

// Time returns the entry timestamp, or the zero time if the entry has none.
func (l *LogLine) Time() time.Time {
	return l.parsedTime
}

// ParseLine parses one raw JSONL line into a LogLine. A nil error means the
// line contributes to the session's message count; any error means the line
// should be counted as skipped and otherwise ignored.
func ParseLine(raw []byte) (*LogLine, error) {
	var line LogLine
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, fmt.Errorf("malformed log line: %w", err)
	}
	if line.Type == "" {
		return nil, fmt.Errorf("log line has no type tag")
	}
	if line.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, line.Timestamp); err == nil {
			line.parsedTime = t
		}
	}
	return &line, nil
}

// messageBody mirrors the polymorphic message field: content is either a
// plain string or an array of content blocks.
type messageBody struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Thinking string `json:"thinking"`
	Name     string `json:"name"`
}

// MessageText extracts the first text content from the entry's message
// body. Returns "" for entries without a textual message.
func (l *LogLine) MessageText() string {
	if len(l.Message) == 0 {
		return ""
	}
	var body messageBody
	if err := json.Unmarshal(l.Message, &body); err != nil {
		return ""
	}
	if len(body.Content) == 0 {
		return ""
	}

	// Simple form: content is a string.
	var text string
	if err := json.Unmarshal(body.Content, &text); err == nil {
		return text
	}

	// Structured form: first text block wins.
	var blocks []contentBlock
	if err := json.Unmarshal(body.Content, &blocks); err != nil {
		return ""
	}
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			return b.Text
		}
	}
	return ""
}

// SanitizePreview collapses control characters and whitespace runs in text
// and truncates it for display in the session list.
func SanitizePreview(text string, maxLen int) string {
	mapped := strings.Map(func(r rune) rune {
		if r < ' ' || r == 0x7f {
			return ' '
		}
		return r
	}, text)
	mapped = strings.Join(strings.Fields(mapped), " ")
	if len(mapped) > maxLen {
		return mapped[:maxLen] + "..."
	}
	return mapped
}
