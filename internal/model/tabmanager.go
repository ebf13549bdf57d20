package model

import "fmt"

// TabManager owns the ordered collection of tabs and the current index,
// and applies process-wide sort-toggle changes to every tab at once. It
// enforces the "closing the last tab is forbidden" invariant in one place.
type TabManager struct {
	Tabs       []*Tab
	CurrentIdx int
	counter    int
}

// NewTabManager creates a manager seeded with one tab at path.
func NewTabManager(path string) *TabManager {
	tm := &TabManager{}
	tm.NewTab(path)
	return tm
}

// NewTab appends a new tab at path and makes it current.
func (tm *TabManager) NewTab(path string) *Tab {
	tm.counter++
	id := fmt.Sprintf("tab-%d", tm.counter)
	t := NewTab(id, path)
	tm.Tabs = append(tm.Tabs, t)
	tm.CurrentIdx = len(tm.Tabs) - 1
	return t
}

// CloseTab removes the tab at i. Fails (returns false) if it is the only
// tab. If i was current, the new current index becomes min(i, len-1).
func (tm *TabManager) CloseTab(i int) bool {
	if len(tm.Tabs) <= 1 || i < 0 || i >= len(tm.Tabs) {
		return false
	}
	tm.Tabs = append(tm.Tabs[:i], tm.Tabs[i+1:]...)
	if tm.CurrentIdx >= len(tm.Tabs) {
		tm.CurrentIdx = len(tm.Tabs) - 1
	} else if tm.CurrentIdx > i {
		tm.CurrentIdx--
	}
	return true
}

// SwitchTo changes the current tab index. Each tab's selection is
// untouched — selection never spills across tabs.
func (tm *TabManager) SwitchTo(i int) bool {
	if i < 0 || i >= len(tm.Tabs) {
		return false
	}
	tm.CurrentIdx = i
	return true
}

// Current returns the active tab, or nil if there are none (should not
// happen post-construction).
func (tm *TabManager) Current() *Tab {
	if tm.CurrentIdx < 0 || tm.CurrentIdx >= len(tm.Tabs) {
		return nil
	}
	return tm.Tabs[tm.CurrentIdx]
}

// ToggleSort applies the three-state cycle to every tab for the given
// column (sort order is process-wide, not per-tab), re-sorting each tab
// and rebuilding its path_to_index.
func (tm *TabManager) ToggleSort(col SortColumn) {
	if len(tm.Tabs) == 0 {
		return
	}
	next := tm.Tabs[0].SortOrder.ToggleColumn(col)
	for _, t := range tm.Tabs {
		t.ApplySort(next)
	}
}
