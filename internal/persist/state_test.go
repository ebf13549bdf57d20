package persist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := State{
		TabManager: TabManagerState{
			TabStates:     []TabState{{CurrentPath: "/home/user"}, {CurrentPath: "/var/log"}},
			CurrentTabIdx: 1,
		},
		Bookmarks: []string{"/home/user/projects", "/etc"},
		VisitHistory: []VisitHistoryEntry{
			{Path: "/home/user", Count: 42, AccessedTS: 1700000000},
		},
	}

	if err := Save(dir, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.TabManager.TabStates) != 2 || got.TabManager.TabStates[0].CurrentPath != "/home/user" {
		t.Errorf("tab states = %+v", got.TabManager.TabStates)
	}
	if got.TabManager.CurrentTabIdx != 1 {
		t.Errorf("current tab index = %d, want 1", got.TabManager.CurrentTabIdx)
	}
	if len(got.Bookmarks) != 2 || got.Bookmarks[1] != "/etc" {
		t.Errorf("bookmarks = %+v", got.Bookmarks)
	}
	if len(got.VisitHistory) != 1 || got.VisitHistory[0].Count != 42 {
		t.Errorf("visit history = %+v", got.VisitHistory)
	}
}

func TestLoad_MissingFileReturnsZeroState(t *testing.T) {
	dir := t.TempDir()
	state, err := Load(dir)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(state.TabManager.TabStates) != 0 || len(state.Bookmarks) != 0 {
		t.Errorf("expected zero state, got %+v", state)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte("{not valid json"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error loading corrupt state file")
	}
}
