package repl

import (
	"bufio"
	"os"
	"slices"
	"strings"
	"sync"
)

const (
	baseHistory = "history.utf8"

	// maxHistoryEntries bounds the history file; the oldest entries are
	// dropped when a write would exceed it.
	maxHistoryEntries = 1000
)

// prefix returns the tag that marks the mode of a persisted history line.
func (m inputMode) prefix() string {
	if m == modeCmd {
		return "C:"
	}

	return "E:"
}

// HistoryEntry is one recorded line together with the mode it ran under.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// History keeps session input in memory and mirrors it to a file so it
// survives restarts.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory returns a History persisted at path. Nothing is read until
// [History.Load].
func NewHistory(path string) *History {
	return &History{path: path}
}

// parseHistoryLine decodes one persisted line. Blank lines are skipped.
// Lines without a mode tag predate tagging and read back as eval entries.
func parseHistoryLine(line string) (HistoryEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return HistoryEntry{}, false
	}

	if s, ok := strings.CutPrefix(line, modeCmd.prefix()); ok {
		return HistoryEntry{Line: s, Mode: modeCmd}, true
	}

	s, _ := strings.CutPrefix(line, modeExpr.prefix())

	return HistoryEntry{Line: s, Mode: modeExpr}, true
}

// Load replaces the in-memory entries with the contents of the history
// file. A missing file is not an error; the history starts empty.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if entry, ok := parseHistoryLine(scanner.Text()); ok {
			h.entries = append(h.entries, entry)
		}
	}

	return scanner.Err()
}

// Record appends a new entry under the given mode. A repeat of the
// last entry collapses, and an earlier duplicate moves to the end instead
// of repeating.
func (h *History) Record(entry string, mode inputMode) (int, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return 0, nil
	}

	rec := HistoryEntry{Line: entry, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == rec {
		return len(entry), nil
	}

	rewrite := false

	if i := slices.Index(h.entries, rec); i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
		rewrite = true
	}

	h.entries = append(h.entries, rec)

	// Drop the oldest entries when over the cap.
	if len(h.entries) > maxHistoryEntries {
		h.entries = h.entries[len(h.entries)-maxHistoryEntries:]
		rewrite = true
	}

	// Removed or dropped entries force a full rewrite; a plain append
	// otherwise.
	if rewrite {
		return h.rewriteFile()
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return file.WriteString(mode.prefix() + entry + "\n")
}

// At returns the entry at index i, oldest first.
func (h *History) At(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrHistoryRange
	}

	return h.entries[i], nil
}

// Len reports how many entries are recorded.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewriteFile truncates the file and writes every entry back out.
// Callers hold h.mu.
func (h *History) rewriteFile() (int, error) {
	file, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	total := 0

	for _, e := range h.entries {
		n, err := file.WriteString(e.Mode.prefix() + e.Line + "\n")
		if err != nil {
			return total, err
		}

		total += n
	}

	return total, nil
}
