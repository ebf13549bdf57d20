// Package model holds the core browsing data model: directory entries,
// tabs, the tab manager, the per-tab action journal, and its rollback engine.
package model

import (
	"os"
	"strings"
	"time"
)

// Kind identifies what a DirEntry points at.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
)

// DirEntry is an immutable snapshot of one filesystem entry. Equality is by Path.
type DirEntry struct {
	Path        string
	Name        string
	Kind        Kind
	Size        int64
	ModifiedTS  time.Time
	Permissions os.FileMode
	IsHidden    bool
}

// NewDirEntry builds a DirEntry from a path and os.FileInfo, classifying symlinks
// by the Lstat mode bit rather than following them (symlinks are preserved, not
// resolved, per the filesystem interface contract).
func NewDirEntry(path string, info os.FileInfo) DirEntry {
	kind := KindFile
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		kind = KindSymlink
	case info.IsDir():
		kind = KindDir
	}
	name := info.Name()
	return DirEntry{
		Path:        path,
		Name:        name,
		Kind:        kind,
		Size:        info.Size(),
		ModifiedTS:  info.ModTime(),
		Permissions: info.Mode().Perm(),
		IsHidden:    strings.HasPrefix(name, "."),
	}
}

// SortColumn selects which field entries are ordered by.
type SortColumn int

const (
	SortNone SortColumn = iota
	SortByName
	SortBySize
	SortByDate
	SortByType
)

// SortOrder is the direction of a SortColumn.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// Sort is the (column, order) pair a Tab currently sorts its entries by.
type Sort struct {
	Column SortColumn
	Order  SortOrder
}

// ToggleColumn advances a column button through the three-state cycle
// Ascending -> Descending -> None. Calling it on a different column than
// currently active starts that column fresh at Ascending.
func (s Sort) ToggleColumn(col SortColumn) Sort {
	if s.Column != col {
		return Sort{Column: col, Order: Ascending}
	}
	switch s.Order {
	case Ascending:
		return Sort{Column: col, Order: Descending}
	default: // Descending -> None
		return Sort{Column: SortNone, Order: Ascending}
	}
}

// ToggleTwoState is the comma-popup's fixed-column two-state toggle
// (Ascending <-> Descending only, never None), kept deliberately distinct
// from ToggleColumn; see DESIGN.md.
func (s Sort) ToggleTwoState(col SortColumn) Sort {
	if s.Column != col || s.Order == Descending {
		return Sort{Column: col, Order: Ascending}
	}
	return Sort{Column: col, Order: Descending}
}

// SortEntries orders entries in place according to s. Directories are
// grouped first when groupDirsFirst is set; ties within a group break on
// case-insensitive name.
func SortEntries(entries []DirEntry, s Sort, groupDirsFirst bool) {
	less := comparator(s)
	insertionSort(entries, func(a, b DirEntry) bool {
		if groupDirsFirst && (a.Kind == KindDir) != (b.Kind == KindDir) {
			return a.Kind == KindDir
		}
		return less(a, b)
	})
}

func comparator(s Sort) func(a, b DirEntry) bool {
	nameLess := func(a, b DirEntry) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}

	var base func(a, b DirEntry) bool
	switch s.Column {
	case SortBySize:
		base = func(a, b DirEntry) bool {
			if a.Size == b.Size {
				return nameLess(a, b)
			}
			return a.Size < b.Size
		}
	case SortByDate:
		base = func(a, b DirEntry) bool {
			if a.ModifiedTS.Equal(b.ModifiedTS) {
				return nameLess(a, b)
			}
			return a.ModifiedTS.Before(b.ModifiedTS)
		}
	case SortByType:
		base = func(a, b DirEntry) bool {
			extA, extB := strings.ToLower(ext(a.Name)), strings.ToLower(ext(b.Name))
			if extA == extB {
				return nameLess(a, b)
			}
			return extA < extB
		}
	case SortNone:
		// Preserve filesystem-given order: never reorder.
		return func(a, b DirEntry) bool { return false }
	default: // SortByName
		base = nameLess
	}

	if s.Order == Descending {
		return func(a, b DirEntry) bool { return base(b, a) }
	}
	return base
}

func ext(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

// insertionSort is a stable sort; used instead of sort.SliceStable so that
// SortNone's always-false comparator is a true no-op with zero swaps.
func insertionSort(entries []DirEntry, less func(a, b DirEntry) bool) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && less(entries[j], entries[j-1]); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}
