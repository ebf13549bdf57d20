package model

import "testing"

func makeEntries(names ...string) []DirEntry {
	entries := make([]DirEntry, len(names))
	for i, n := range names {
		entries[i] = DirEntry{Path: "/root/" + n, Name: n}
	}
	return entries
}

func TestNewTab_Invariants(t *testing.T) {
	tab := NewTab("t1", "/root")
	if err := tab.CheckInvariants(); err != nil {
		t.Fatalf("fresh tab violates invariants: %v", err)
	}
	if tab.HistoryPos != 1 || len(tab.History) != 1 || tab.History[0] != "/root" {
		t.Errorf("unexpected initial history: %+v pos=%d", tab.History, tab.HistoryPos)
	}
}

func TestTab_SetEntries_RehydratesSelection(t *testing.T) {
	tab := NewTab("t1", "/root")
	tab.SetEntries(makeEntries("b.txt", "a.txt", "c.txt"), "")
	if err := tab.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	// Default sort is SortNone, so order is preserved: b, a, c.
	if tab.Entries[0].Name != "b.txt" {
		t.Fatalf("expected insertion order preserved, got %+v", tab.Entries)
	}
	selected := tab.Entries[tab.SelectedIndex].Path

	tab.SetEntries(makeEntries("b.txt", "a.txt", "c.txt", "d.txt"), selected)
	if err := tab.CheckInvariants(); err != nil {
		t.Fatalf("invariants after refresh: %v", err)
	}
	if tab.Entries[tab.SelectedIndex].Path != selected {
		t.Errorf("selection not rehydrated: want %s, got %s", selected, tab.Entries[tab.SelectedIndex].Path)
	}
}

func TestTab_SetEntries_DropsStaleMarks(t *testing.T) {
	tab := NewTab("t1", "/root")
	tab.SetEntries(makeEntries("a.txt", "b.txt"), "")
	tab.MarkedEntries["/root/a.txt"] = struct{}{}
	tab.MarkedEntries["/root/b.txt"] = struct{}{}

	tab.SetEntries(makeEntries("a.txt"), "/root/a.txt")
	if err := tab.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if _, ok := tab.MarkedEntries["/root/b.txt"]; ok {
		t.Error("stale mark for removed entry b.txt was not dropped")
	}
	if _, ok := tab.MarkedEntries["/root/a.txt"]; !ok {
		t.Error("surviving mark for a.txt was incorrectly dropped")
	}
}

func TestTab_ApplySort_FollowsSelectedPath(t *testing.T) {
	tab := NewTab("t1", "/root")
	tab.SetEntries(makeEntries("b.txt", "a.txt", "c.txt"), "")
	for i, e := range tab.Entries {
		if e.Name == "c.txt" {
			tab.SelectedIndex = i
		}
	}

	tab.ApplySort(Sort{Column: SortByName, Order: Ascending})
	if err := tab.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if tab.Entries[tab.SelectedIndex].Name != "c.txt" {
		t.Errorf("selection did not follow c.txt through re-sort, landed on %s", tab.Entries[tab.SelectedIndex].Name)
	}
	if tab.Entries[0].Name != "a.txt" {
		t.Errorf("expected ascending name sort, got %+v", tab.Entries)
	}
}

func TestTab_NavigateHistory(t *testing.T) {
	tab := NewTab("t1", "/a")
	tab.NavigateTo("/b")
	tab.NavigateTo("/c")
	if tab.CurrentPath != "/c" || tab.HistoryPos != 3 {
		t.Fatalf("after two navigations: path=%s pos=%d", tab.CurrentPath, tab.HistoryPos)
	}

	path, ok := tab.GoBack()
	if !ok || path != "/b" || tab.CurrentPath != "/b" {
		t.Fatalf("GoBack = %q, %v; want /b, true", path, ok)
	}
	path, ok = tab.GoBack()
	if !ok || path != "/a" {
		t.Fatalf("second GoBack = %q, %v; want /a, true", path, ok)
	}
	if _, ok := tab.GoBack(); ok {
		t.Error("GoBack past the start should fail")
	}

	path, ok = tab.GoForward()
	if !ok || path != "/b" {
		t.Fatalf("GoForward = %q, %v; want /b, true", path, ok)
	}
}

func TestTab_NavigateTo_TruncatesForwardHistory(t *testing.T) {
	tab := NewTab("t1", "/a")
	tab.NavigateTo("/b")
	tab.NavigateTo("/c")
	tab.GoBack()
	tab.GoBack() // now at /a, History = [/a /b /c], HistoryPos=1

	tab.NavigateTo("/d")
	if len(tab.History) != 2 || tab.History[1] != "/d" {
		t.Fatalf("expected forward history truncated and /d appended, got %+v", tab.History)
	}
	if _, ok := tab.GoForward(); ok {
		t.Error("no forward history should remain after branching")
	}
}

func TestTab_NavigateTo_SamePathIsNoop(t *testing.T) {
	tab := NewTab("t1", "/a")
	tab.NavigateTo("/a")
	if len(tab.History) != 1 || tab.HistoryPos != 1 {
		t.Errorf("navigating to current path should not push history, got %+v pos=%d", tab.History, tab.HistoryPos)
	}
}

func TestSort_ToggleColumn_ThreeStateCycle(t *testing.T) {
	s := Sort{}
	s = s.ToggleColumn(SortByName)
	if s.Column != SortByName || s.Order != Ascending {
		t.Fatalf("first toggle = %+v, want {SortByName Ascending}", s)
	}
	s = s.ToggleColumn(SortByName)
	if s.Order != Descending {
		t.Fatalf("second toggle = %+v, want Descending", s)
	}
	s = s.ToggleColumn(SortByName)
	if s.Column != SortNone {
		t.Fatalf("third toggle = %+v, want SortNone", s)
	}
}

func TestSort_ToggleColumn_SwitchingColumnResetsToAscending(t *testing.T) {
	s := Sort{Column: SortByName, Order: Descending}
	s = s.ToggleColumn(SortBySize)
	if s.Column != SortBySize || s.Order != Ascending {
		t.Errorf("switching column = %+v, want {SortBySize Ascending}", s)
	}
}

func TestSort_ToggleTwoState_NeverReachesNone(t *testing.T) {
	s := Sort{}
	for i := 0; i < 5; i++ {
		s = s.ToggleTwoState(SortByDate)
		if s.Column == SortNone {
			t.Fatalf("ToggleTwoState must never produce SortNone, got %+v at iteration %d", s, i)
		}
	}
}

func TestSortEntries_GroupDirsFirst(t *testing.T) {
	entries := []DirEntry{
		{Path: "/r/file.txt", Name: "file.txt", Kind: KindFile},
		{Path: "/r/adir", Name: "adir", Kind: KindDir},
		{Path: "/r/afile.txt", Name: "afile.txt", Kind: KindFile},
	}
	SortEntries(entries, Sort{Column: SortByName, Order: Ascending}, true)
	if entries[0].Kind != KindDir {
		t.Fatalf("expected directory first, got %+v", entries)
	}
}

func TestSortEntries_SortNoneIsNoop(t *testing.T) {
	entries := makeEntries("z.txt", "a.txt", "m.txt")
	before := append([]DirEntry(nil), entries...)
	SortEntries(entries, Sort{Column: SortNone}, false)
	for i := range entries {
		if entries[i].Path != before[i].Path {
			t.Fatalf("SortNone reordered entries: before=%+v after=%+v", before, entries)
		}
	}
}
