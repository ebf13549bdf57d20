package app

// PopupKind discriminates the modal states that can own the keyboard at
// any one time. At most one popup is open; opening a new one replaces
// whatever was open before.
type PopupKind int

const (
	PopupNone PopupKind = iota
	PopupTeleport
	PopupRename
	PopupDeleteConfirm
	PopupOpenWith
	PopupConflict
	PopupPluginError
	PopupCreate
)

// DeleteStage is DeleteConfirm's own two-phase sub-state: a first
// confirmation, then — only when any selected path is a non-empty
// directory — a second "this will recurse" confirmation before Delete
// actually runs.
type DeleteStage int

const (
	DeleteInitial DeleteStage = iota
	DeleteRecursiveConfirm
)

// Popup is the tagged union of every modal's own data. Kind selects
// which field is meaningful; the rest are zero.
type Popup struct {
	Kind PopupKind

	// PopupTeleport
	TeleportQuery string

	// PopupRename
	RenameTarget  string
	RenameInput   string

	// PopupDeleteConfirm
	DeleteTargets []string
	DeleteStage   DeleteStage

	// PopupOpenWith
	OpenWithTarget string

	// PopupConflict
	ConflictSrc, ConflictDst string
	ConflictRemaining        int
	conflictResult           chan ConflictResolution

	// PopupPluginError
	PluginErrorName    string
	PluginErrorMessage string

	// PopupCreate
	CreateIsDir bool
	CreateInput string
}

// OpenTeleport opens the teleport switcher with an empty query.
func OpenTeleport() Popup { return Popup{Kind: PopupTeleport} }

// OpenRename opens the rename popup seeded with target's current name.
func OpenRename(target, currentName string) Popup {
	return Popup{Kind: PopupRename, RenameTarget: target, RenameInput: currentName}
}

// OpenDeleteConfirm opens the first stage of delete confirmation for
// targets. Advance with AdvanceDelete once the user confirms.
func OpenDeleteConfirm(targets []string) Popup {
	return Popup{Kind: PopupDeleteConfirm, DeleteTargets: targets, DeleteStage: DeleteInitial}
}

// NeedsRecursiveConfirm reports whether any target is a non-empty
// directory, requiring the second delete confirmation stage.
func NeedsRecursiveConfirm(targets []string, isNonEmptyDir func(path string) bool) bool {
	for _, t := range targets {
		if isNonEmptyDir(t) {
			return true
		}
	}
	return false
}

// AdvanceDelete moves a PopupDeleteConfirm from DeleteInitial to
// DeleteRecursiveConfirm. Calling it a second time (or on any other
// popup) is a no-op; the caller is expected to close the popup and run
// the actual delete once DeleteRecursiveConfirm has itself been
// confirmed.
func (p *Popup) AdvanceDelete() {
	if p.Kind == PopupDeleteConfirm && p.DeleteStage == DeleteInitial {
		p.DeleteStage = DeleteRecursiveConfirm
	}
}

// OpenConflict opens a paste/move name-collision prompt and returns the
// channel the resolution will be sent on — FileOps.Resolve blocks on
// this channel via ResolveConflict below.
func OpenConflict(src, dst string, remaining int) (Popup, <-chan ConflictResolution) {
	ch := make(chan ConflictResolution, 1)
	return Popup{
		Kind:              PopupConflict,
		ConflictSrc:       src,
		ConflictDst:       dst,
		ConflictRemaining: remaining,
		conflictResult:    ch,
	}, ch
}

// ResolveConflict answers the pending conflict prompt with the user's
// choice, unblocking the FileOps call that is waiting on it.
func (p *Popup) ResolveConflict(res ConflictResolution) {
	if p.Kind != PopupConflict || p.conflictResult == nil {
		return
	}
	p.conflictResult <- res
	close(p.conflictResult)
	p.conflictResult = nil
}

// OpenPluginError opens a popup reporting that a plugin call failed.
func OpenPluginError(pluginName, message string) Popup {
	return Popup{Kind: PopupPluginError, PluginErrorName: pluginName, PluginErrorMessage: message}
}

// OpenWith opens the "open with" application picker for target.
func OpenWith(target string) Popup {
	return Popup{Kind: PopupOpenWith, OpenWithTarget: target}
}

// OpenCreate opens the new-file/new-folder name prompt.
func OpenCreate(isDir bool) Popup {
	return Popup{Kind: PopupCreate, CreateIsDir: isDir}
}

// Close returns the zero (no popup open) state.
func Close() Popup { return Popup{Kind: PopupNone} }

// IsOpen reports whether any popup currently owns the keyboard.
func (p Popup) IsOpen() bool { return p.Kind != PopupNone }
