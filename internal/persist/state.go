// Package persist saves and loads the on-exit session snapshot: which
// directories were open, the user's bookmarks, and the visit-history
// cache, all keyed by the literal JSON shape external tools can read.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TabState is one tab's persisted shape. Selection is deliberately not
// persisted — only the directory the tab had open.
type TabState struct {
	CurrentPath string `json:"current_path"`
}

// TabManagerState is the persisted shape of the tab manager.
type TabManagerState struct {
	TabStates      []TabState `json:"tab_states"`
	CurrentTabIdx  int        `json:"current_tab_index"`
}

// VisitHistoryEntry mirrors one row of the visit_history table.
type VisitHistoryEntry struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	AccessedTS int64  `json:"accessed_ts"`
}

// State is the full on-disk snapshot written at graceful shutdown.
type State struct {
	TabManager   TabManagerState     `json:"tab_manager"`
	Bookmarks    []string            `json:"bookmarks"`
	VisitHistory []VisitHistoryEntry `json:"visit_history"`
}

// StatePath returns <config-dir>/state.json.
func StatePath(configDir string) string {
	return filepath.Join(configDir, "state.json")
}

// Save writes state as pretty-printed JSON to <config-dir>/state.json.
func Save(configDir string, state State) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("persist: create config dir: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: marshal state: %w", err)
	}
	if err := os.WriteFile(StatePath(configDir), data, 0o644); err != nil {
		return fmt.Errorf("persist: write state: %w", err)
	}
	return nil
}

// Load reads the snapshot at <config-dir>/state.json. A missing file
// returns a zero State and no error — first launch has nothing to
// restore.
func Load(configDir string) (State, error) {
	data, err := os.ReadFile(StatePath(configDir))
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("persist: read state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("persist: unmarshal state: %w", err)
	}
	return state, nil
}
