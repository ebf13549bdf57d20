package model

import (
	"fmt"

	"github.com/kiorg/kiorg/internal/debug"
)

// Tab is one independent browsable view: a directory, its entries, the
// cursor and mark set over them, per-tab sort, visit history, and the
// per-tab undo/redo action journal.
type Tab struct {
	ID             string
	CurrentPath    string
	Entries        []DirEntry
	SelectedIndex  int
	MarkedEntries  map[string]struct{}
	SortOrder      Sort
	PathToIndex    map[string]int
	History        []string
	HistoryPos     int // 1-based: History[HistoryPos-1] == CurrentPath
	ActionHistory  *TabActionHistory
	GroupDirsFirst bool
}

// NewTab seeds a tab at path with a one-entry history and an empty
// mutation journal.
func NewTab(id, path string) *Tab {
	return &Tab{
		ID:            id,
		CurrentPath:   path,
		MarkedEntries: make(map[string]struct{}),
		PathToIndex:   make(map[string]int),
		History:       []string{path},
		HistoryPos:    1,
		ActionHistory: NewTabActionHistory(DefaultMaxHistorySize),
		SelectedIndex: -1,
	}
}

// SetEntries installs a freshly-listed, freshly-sorted entry slice and
// rebuilds path_to_index, then attempts to rehydrate the selection at
// prevPath. Stale marks (paths no longer present) are dropped.
func (t *Tab) SetEntries(entries []DirEntry, prevPath string) {
	SortEntries(entries, t.SortOrder, t.GroupDirsFirst)
	t.Entries = entries
	t.rebuildIndex()

	if prevPath != "" {
		if idx, ok := t.PathToIndex[prevPath]; ok {
			t.SelectedIndex = idx
		} else if len(entries) > 0 {
			t.SelectedIndex = 0
		} else {
			t.SelectedIndex = -1
		}
	} else if len(entries) > 0 && t.SelectedIndex < 0 {
		t.SelectedIndex = 0
	}
	if t.SelectedIndex >= len(entries) {
		t.SelectedIndex = len(entries) - 1
	}

	for path := range t.MarkedEntries {
		if _, ok := t.PathToIndex[path]; !ok {
			delete(t.MarkedEntries, path)
		}
	}
}

func (t *Tab) rebuildIndex() {
	t.PathToIndex = make(map[string]int, len(t.Entries))
	for i, e := range t.Entries {
		t.PathToIndex[e.Path] = i
	}
}

// ApplySort re-sorts Entries in place for the given sort, rebuilds
// path_to_index, and rehydrates the selection by the currently selected
// entry's path so the cursor follows its file through a re-sort.
func (t *Tab) ApplySort(s Sort) {
	var selectedPath string
	if t.SelectedIndex >= 0 && t.SelectedIndex < len(t.Entries) {
		selectedPath = t.Entries[t.SelectedIndex].Path
	}

	t.SortOrder = s
	SortEntries(t.Entries, s, t.GroupDirsFirst)
	t.rebuildIndex()

	if selectedPath != "" {
		if idx, ok := t.PathToIndex[selectedPath]; ok {
			t.SelectedIndex = idx
		}
	}
}

// UpdateSelection sets the cursor. Caller must ensure i < len(Entries).
func (t *Tab) UpdateSelection(i int) {
	t.SelectedIndex = i
}

// NavigateTo pushes path onto the visit history (truncating any forward
// history) unless it's already current.
func (t *Tab) NavigateTo(path string) {
	if path == t.CurrentPath {
		return
	}
	t.History = append(t.History[:t.HistoryPos], path)
	t.HistoryPos++
	t.CurrentPath = path
	debug.Log(debug.APP, "tab %s navigate -> %s (history_pos=%d)", t.ID, path, t.HistoryPos)
}

// GoBack moves history_pos back by one and returns the path to navigate
// to without pushing, or ("", false) if already at the start.
func (t *Tab) GoBack() (string, bool) {
	if t.HistoryPos <= 1 {
		return "", false
	}
	t.HistoryPos--
	path := t.History[t.HistoryPos-1]
	t.CurrentPath = path
	return path, true
}

// GoForward moves history_pos forward by one, mirroring GoBack.
func (t *Tab) GoForward() (string, bool) {
	if t.HistoryPos >= len(t.History) {
		return "", false
	}
	t.HistoryPos++
	path := t.History[t.HistoryPos-1]
	t.CurrentPath = path
	return path, true
}

// CheckInvariants validates the tab's internal consistency invariants and
// returns a descriptive error for the first violation found. Intended for
// tests.
func (t *Tab) CheckInvariants() error {
	for i, e := range t.Entries {
		if idx, ok := t.PathToIndex[e.Path]; !ok || idx != i {
			return fmt.Errorf("path_to_index[%s] = %d, want %d", e.Path, idx, i)
		}
	}
	for path := range t.MarkedEntries {
		if _, ok := t.PathToIndex[path]; !ok {
			return fmt.Errorf("marked entry %s missing from path_to_index", path)
		}
	}
	if t.HistoryPos < 1 || t.HistoryPos > len(t.History) {
		return fmt.Errorf("history_pos %d out of range [1,%d]", t.HistoryPos, len(t.History))
	}
	if t.History[t.HistoryPos-1] != t.CurrentPath {
		return fmt.Errorf("history[history_pos-1] = %s, want current_path %s", t.History[t.HistoryPos-1], t.CurrentPath)
	}
	if len(t.Entries) > 0 && t.SelectedIndex >= len(t.Entries) {
		return fmt.Errorf("selected_index %d >= len(entries) %d", t.SelectedIndex, len(t.Entries))
	}
	return nil
}
