package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// Line prefixes recording the mode of each history entry.
const (
	evalPrefix = "E:"
	ctrlPrefix = "C:"
)

// HistoryEntry is one submitted line and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

func (e HistoryEntry) String() string {
	if e.Mode == modeCtrl {
		return ctrlPrefix + e.Line
	}

	return evalPrefix + e.Line
}

func parseHistoryEntry(line string) HistoryEntry {
	if s, ok := strings.CutPrefix(line, ctrlPrefix); ok {
		return HistoryEntry{Line: s, Mode: modeCtrl}
	}

	s, _ := strings.CutPrefix(line, evalPrefix)

	return HistoryEntry{Line: s, Mode: modeEval}
}

// History is the list of submitted lines, persisted one per line in a file.
// An empty path keeps the history in memory only.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory returns an empty history backed by the file at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with the contents of the history file. A
// missing file is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			h.entries = append(h.entries, parseHistoryEntry(line))
		}
	}

	return s.Err()
}

// Add records line as the newest entry of mode. An earlier identical entry
// is moved rather than repeated.
func (h *History) Add(line string, mode inputMode) error {
	e := HistoryEntry{Line: strings.TrimSpace(line), Mode: mode}
	if e.Line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == e {
		return nil
	}

	i := slices.Index(h.entries, e)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, e)

	if h.path == "" {
		return nil
	}

	if i >= 0 {
		return h.save(h.entries, os.O_TRUNC)
	}

	return h.save(h.entries[len(h.entries)-1:], os.O_APPEND)
}

// save writes entries to the history file, truncating or appending
// according to flag.
func (h *History) save(entries []HistoryEntry, flag int) error {
	f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|flag, 0o600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, e := range entries {
		_, _ = w.WriteString(e.String() + "\n")
	}

	if err := w.Flush(); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// Entry returns the entry at index i, where 0 is the oldest.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}
