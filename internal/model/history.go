package model

import (
	"fmt"
	"time"

	"github.com/kiorg/kiorg/internal/debug"
)

// DefaultMaxHistorySize bounds a TabActionHistory.
const DefaultMaxHistorySize = 256

// ActionKind discriminates the ActionType union.
type ActionKind int

const (
	ActionCreate ActionKind = iota
	ActionRename
	ActionCopy
	ActionMove
)

// CreateOperation records one created path (file or directory) for undo.
type CreateOperation struct {
	Path  string
	IsDir bool
}

// RenameOperation records a rename's old and new paths.
type RenameOperation struct {
	OldPath, NewPath string
}

// CopyOperation records a copy's source and the path it was copied to.
type CopyOperation struct {
	SourcePath, TargetPath string
}

// MoveOperation records a move's source and destination.
type MoveOperation struct {
	SourcePath, TargetPath string
}

// ActionType is one undoable mutation, carrying every operation it
// performed (a multi-file paste is one ActionType with many operations).
type ActionType struct {
	Kind      ActionKind
	CreateOps []CreateOperation
	RenameOps []RenameOperation
	CopyOps   []CopyOperation
	MoveOps   []MoveOperation
}

// OperationCount returns how many individual operations this action holds.
func (a ActionType) OperationCount() int {
	switch a.Kind {
	case ActionCreate:
		return len(a.CreateOps)
	case ActionRename:
		return len(a.RenameOps)
	case ActionCopy:
		return len(a.CopyOps)
	case ActionMove:
		return len(a.MoveOps)
	}
	return 0
}

// Describe produces a display-only human summary, singular vs "N items"
// phrasing.
func (a ActionType) Describe() string {
	n := a.OperationCount()
	var verb, noun string
	switch a.Kind {
	case ActionCreate:
		verb, noun = "Created", "item"
	case ActionRename:
		verb, noun = "Renamed", "item"
	case ActionCopy:
		verb, noun = "Copied", "item"
	case ActionMove:
		verb, noun = "Moved", "item"
	}
	if n == 1 {
		return fmt.Sprintf("%s 1 %s", verb, noun)
	}
	return fmt.Sprintf("%s %d %ss", verb, n, noun)
}

// HistoryAction is one entry on a TabActionHistory stack: an ActionType
// plus a display-only local timestamp (correctness never depends on it,
// only on stack order).
type HistoryAction struct {
	Action    ActionType
	Timestamp time.Time
}

// TabActionHistory is the per-tab linear undo/redo stack: a bounded
// active stack and a rolled-back stack, with redo clearing on any new
// action.
type TabActionHistory struct {
	active        []HistoryAction
	rolledBack    []HistoryAction
	maxHistorySize int
}

// NewTabActionHistory creates an empty journal bounded at maxSize.
func NewTabActionHistory(maxSize int) *TabActionHistory {
	if maxSize <= 0 {
		maxSize = DefaultMaxHistorySize
	}
	return &TabActionHistory{maxHistorySize: maxSize}
}

// AddAction appends action to the active stack, clears rolled_back (a
// fresh action invalidates any pending redo), and drops the oldest
// active entry if over the bound.
func (h *TabActionHistory) AddAction(action ActionType) {
	h.active = append(h.active, HistoryAction{Action: action, Timestamp: time.Now()})
	h.rolledBack = nil
	if len(h.active) > h.maxHistorySize {
		h.active = h.active[len(h.active)-h.maxHistorySize:]
	}
	debug.Log(debug.JOURNAL, "add_action: %s (active=%d)", action.Describe(), len(h.active))
}

// UndoLastAction pops the most recent active action onto rolled_back and
// returns it for the caller to pass to the Rollback engine. ok is false
// if active is empty.
func (h *TabActionHistory) UndoLastAction() (HistoryAction, bool) {
	if len(h.active) == 0 {
		return HistoryAction{}, false
	}
	last := h.active[len(h.active)-1]
	h.active = h.active[:len(h.active)-1]
	h.rolledBack = append(h.rolledBack, last)
	return last, true
}

// RedoLastAction pops the most recently rolled-back action back onto
// active and returns it for the caller to replay.
func (h *TabActionHistory) RedoLastAction() (HistoryAction, bool) {
	if len(h.rolledBack) == 0 {
		return HistoryAction{}, false
	}
	last := h.rolledBack[len(h.rolledBack)-1]
	h.rolledBack = h.rolledBack[:len(h.rolledBack)-1]
	h.active = append(h.active, last)
	return last, true
}

// GetLastRollbackableAction peeks the top of active without popping.
func (h *TabActionHistory) GetLastRollbackableAction() (HistoryAction, bool) {
	if len(h.active) == 0 {
		return HistoryAction{}, false
	}
	return h.active[len(h.active)-1], true
}

// GetLastRedoableAction peeks the top of rolled_back without popping.
func (h *TabActionHistory) GetLastRedoableAction() (HistoryAction, bool) {
	if len(h.rolledBack) == 0 {
		return HistoryAction{}, false
	}
	return h.rolledBack[len(h.rolledBack)-1], true
}

// HasRolledBackActions reports whether redo has anything to replay.
func (h *TabActionHistory) HasRolledBackActions() bool { return len(h.rolledBack) > 0 }

// ActiveActions returns the active stack (oldest first).
func (h *TabActionHistory) ActiveActions() []HistoryAction { return h.active }

// RolledBackActions returns the rolled-back stack (oldest first).
func (h *TabActionHistory) RolledBackActions() []HistoryAction { return h.rolledBack }

// Len returns the number of active actions.
func (h *TabActionHistory) Len() int { return len(h.active) }

// IsEmpty reports whether the active stack is empty.
func (h *TabActionHistory) IsEmpty() bool { return len(h.active) == 0 }

// Clear drops both stacks.
func (h *TabActionHistory) Clear() {
	h.active = nil
	h.rolledBack = nil
}
