package sessions

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/quaid/total-recall/pkg/models"
)

const (
	// Files above this size are summarized from a bounded prefix and
	// suffix instead of a full parse.
	largeFileThreshold = 4 << 20

	// Bounds for the large-file path.
	summaryHeadBytes = 512 << 10
	summaryTailBytes = 256 << 10

	// Session logs can carry very large single lines (tool results,
	// pasted content), so the scanner buffer must grow well past the
	// bufio default.
	maxLineBytes = 10 << 20

	defaultPreviewLines = 3
	previewLineMaxLen   = 200
)

// summaryBuilder accumulates a Session summary line by line. The preview
// is the last previewLines non-empty textual messages seen, so the tail of
// the conversation wins.
type summaryBuilder struct {
	s            *models.Session
	preview      []string
	previewLines int
}

// summarizeSession builds a Session summary from one JSONL log file.
// The session ID always comes from the file name: that is what the resume
// command keys on, and the sessionId field inside entries can differ.
func summarizeSession(path string, previewLines int) (*models.Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat session file: %w", err)
	}
	if previewLines <= 0 {
		previewLines = defaultPreviewLines
	}

	b := &summaryBuilder{
		s: &models.Session{
			ID:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			FilePath: path,
			FileSize: info.Size(),
		},
		previewLines: previewLines,
	}

	if info.Size() > largeFileThreshold {
		err = b.summarizeLarge(path)
	} else {
		err = b.summarizeFull(path)
	}
	if err != nil {
		return nil, err
	}

	s := b.s
	s.Preview = strings.Join(b.preview, "\n")

	// Empty or fully-malformed files are still listed so the user can see
	// and clean them up; they just have no timestamps or preview.
	if s.LastMessage.IsZero() {
		s.LastMessage = s.FirstMessage
	}
	if s.ProjectPath == "" {
		s.ProjectPath = DecodeProjectPath(filepath.Base(filepath.Dir(path)))
	}
	return s, nil
}

// summarizeFull reads every line of the file.
func (b *summaryBuilder) summarizeFull(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	scanner := newLineScanner(f)
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		line, err := ParseLine(raw)
		if err != nil {
			b.s.SkippedLines++
			continue
		}
		b.s.MessageCount++
		b.absorb(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read session file: %w", err)
	}
	return nil
}

// summarizeLarge reads a bounded prefix for first-seen metadata, a bounded
// suffix for the last timestamps and the preview, and counts lines in a
// separate cheap pass. SkippedLines only reflects the sampled regions.
func (b *summaryBuilder) summarizeLarge(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	// Prefix pass.
	scanner := newLineScanner(io.LimitReader(f, summaryHeadBytes))
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		line, err := ParseLine(raw)
		if err != nil {
			b.s.SkippedLines++
			continue
		}
		b.absorb(line)
	}
	// A truncated final line at the read boundary is expected here; only
	// real I/O errors abort.
	if err := scanner.Err(); err != nil && err != bufio.ErrTooLong {
		return fmt.Errorf("read session prefix: %w", err)
	}

	// Suffix pass: the end of the conversation supplies both the last
	// timestamp and the preview.
	if err := b.absorbTail(f); err != nil {
		return err
	}

	// Exact message count needs a full line count, but not a full parse.
	count, err := countNonEmptyLines(path)
	if err != nil {
		return err
	}
	b.s.MessageCount = count
	return nil
}

func (b *summaryBuilder) absorbTail(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat session file: %w", err)
	}
	offset := info.Size() - summaryTailBytes
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek session file: %w", err)
	}

	scanner := newLineScanner(f)
	if offset > 0 {
		// Discard the first line: the seek almost certainly landed
		// mid-line.
		scanner.Scan()
	}
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		line, err := ParseLine(raw)
		if err != nil {
			continue
		}
		b.absorb(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read session suffix: %w", err)
	}
	return nil
}

// absorb folds one parsed line into the summary. First-seen values win for
// metadata fields; timestamps track the full range; the preview keeps the
// last N textual messages.
func (b *summaryBuilder) absorb(line *LogLine) {
	s := b.s
	if s.ProjectPath == "" && line.CWD != "" {
		s.ProjectPath = line.CWD
	}
	if s.Slug == "" && line.Slug != "" {
		s.Slug = line.Slug
	}
	if s.GitBranch == "" && line.GitBranch != "" {
		s.GitBranch = line.GitBranch
	}
	if s.AgentID == "" && line.AgentID != "" {
		s.AgentID = line.AgentID
	}
	if line.IsSidechain {
		s.IsAgent = true
	}

	if t := line.Time(); !t.IsZero() {
		if s.FirstMessage.IsZero() || t.Before(s.FirstMessage) {
			s.FirstMessage = t
		}
		if t.After(s.LastMessage) {
			s.LastMessage = t
		}
	}

	switch line.Kind() {
	case KindUser, KindAssistant:
		if text := SanitizePreview(line.MessageText(), previewLineMaxLen); text != "" {
			b.preview = append(b.preview, text)
			if len(b.preview) > b.previewLines {
				b.preview = b.preview[len(b.preview)-b.previewLines:]
			}
		}
	}
}

// countNonEmptyLines counts non-blank lines without JSON parsing.
func countNonEmptyLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := newLineScanner(f)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("count session lines: %w", err)
	}
	return count, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 128<<10), maxLineBytes)
	return scanner
}
