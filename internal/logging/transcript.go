package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Transcript is the plain-text run log an operator reads after a build. Each
// write opens the file in append mode and closes it again so external tools
// and the operator can read it at any moment.
type Transcript struct {
	mu   sync.Mutex
	path string
}

// NewTranscript returns a transcript writing to path.
func NewTranscript(path string) *Transcript {
	return &Transcript{path: path}
}

// Path returns the transcript location.
func (t *Transcript) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Reset truncates the transcript and writes a header line.
func (t *Transcript) Reset(header string) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create run log directory: %w", err)
	}
	content := fmt.Sprintf("%s %s\n", time.Now().Format(time.DateTime), header)
	if err := os.WriteFile(t.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("reset run log: %w", err)
	}
	return nil
}

// Printf appends one timestamped line.
func (t *Transcript) Printf(format string, args ...any) error {
	if t == nil {
		return nil
	}
	line := fmt.Sprintf(format, args...)
	return t.write(fmt.Sprintf("%s %s\n", time.Now().Format(time.DateTime), strings.TrimRight(line, "\n")))
}

// Section appends a visual separator naming the next block.
func (t *Transcript) Section(title string) error {
	if t == nil {
		return nil
	}
	return t.write(fmt.Sprintf("\n==== %s ====\n", title))
}

// AppendFile copies a tool log into the transcript and returns its decoded
// text. A missing log is reported through the bool, not as an error.
func (t *Transcript) AppendFile(label, path string) (string, bool, error) {
	text, ok, err := ReadToolLog(path)
	if err != nil || !ok {
		return "", ok, err
	}
	if t == nil {
		return text, true, nil
	}
	block := fmt.Sprintf("---- %s (%s) ----\n%s", label, filepath.Base(path), text)
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	if err := t.write(block); err != nil {
		return text, true, err
	}
	return text, true, nil
}

func (t *Transcript) write(s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	if _, err := f.WriteString(s); err != nil {
		f.Close()
		return fmt.Errorf("write run log: %w", err)
	}
	return f.Close()
}

// ReadToolLog reads a tool log, decoding Windows-1252 when the content is not
// valid UTF-8.
func ReadToolLog(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeToolText(data), true, nil
}

// DecodeToolText converts raw tool output to a Go string.
func DecodeToolText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}
