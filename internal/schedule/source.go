// Package schedule turns raw unlock-event documents into canonical thaw
// records and aggregate totals. The raw document is produced by an external
// retrieval command; this package owns only its decoded boundary.
package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// scriptTimeout bounds one retrieval command invocation. Retrying a failed
// invocation is deliberately not done here.
const scriptTimeout = 30 * time.Second

// RawSchedule is the decoded retrieval output. Each event is an open
// mapping; the normalizer extracts the fields it knows defensively.
type RawSchedule struct {
	Thaws []map[string]any `json:"thaws"`
}

// Source delivers the raw schedule document for an address.
type Source interface {
	Fetch(ctx context.Context, address string) (*RawSchedule, error)
}

// ScriptSource retrieves the schedule by running an external command with
// the address as its final argument. The command is expected to write a
// JSON file named thaw_schedule_<first 10 address chars>.json into its
// working directory, or to print a "Saved to <path>" line on stdout.
type ScriptSource struct {
	Command string
	Args    []string
	Dir     string
	Logger  *slog.Logger
}

// Fetch runs the retrieval command and decodes the document it produced.
func (s *ScriptSource) Fetch(ctx context.Context, address string) (*RawSchedule, error) {
	if s.Command == "" {
		return nil, errors.New("schedule source command not configured")
	}

	runCtx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()

	args := append(append([]string{}, s.Args...), address)
	cmd := exec.CommandContext(runCtx, s.Command, args...)
	cmd.Dir = s.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if s.Logger != nil {
		s.Logger.Debug("running schedule retrieval", "command", s.Command, "dir", s.Dir)
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg != "" {
			return nil, fmt.Errorf("schedule retrieval failed: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("schedule retrieval failed: %w", err)
	}

	path := s.outputPath(address, stdout.String())
	if path == "" {
		return nil, fmt.Errorf("schedule output file not found; retrieval stdout: %s",
			strings.TrimSpace(stdout.String()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule output: %w", err)
	}

	return DecodeSchedule(data)
}

// outputPath locates the document the command produced: the conventional
// prefix-named file first, then any "Saved to" pointer in stdout.
func (s *ScriptSource) outputPath(address, stdout string) string {
	prefix := address
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	conventional := filepath.Join(s.Dir, "thaw_schedule_"+prefix+".json")
	if _, err := os.Stat(conventional); err == nil {
		return conventional
	}

	for _, line := range strings.Split(stdout, "\n") {
		idx := strings.Index(line, "Saved to")
		if idx < 0 {
			continue
		}
		candidate := strings.TrimSpace(line[idx+len("Saved to"):])
		if candidate == "" {
			continue
		}
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(s.Dir, candidate)
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// DecodeSchedule parses a raw schedule document, tolerating a UTF-8 BOM.
func DecodeSchedule(data []byte) (*RawSchedule, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	var raw RawSchedule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode schedule document: %w", err)
	}
	return &raw, nil
}

// StaticSource serves a fixed schedule or error. Used in tests and as a
// stand-in when the document was obtained elsewhere.
type StaticSource struct {
	Schedule *RawSchedule
	Err      error
}

func (s *StaticSource) Fetch(ctx context.Context, address string) (*RawSchedule, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Schedule, nil
}
