package model

import (
	"fmt"
	"os"
	"strings"

	"github.com/kiorg/kiorg/internal/debug"
)

// RollbackManager is a pure function of ActionType -> (message, error).
// Before every step it re-checks that the path to act on exists (and,
// for a rename or move, that the original path is free); it does not
// check that the path is still the same file the action produced.
type RollbackManager struct{}

// RollbackAction reverses action, iterating its operations in reverse
// order within the action (so a multi-file paste undoes last-created
// first). Partial failures accumulate into a single aggregate error;
// when any operation fails the message is empty, even if others
// succeeded.
func (RollbackManager) RollbackAction(action ActionType) (string, error) {
	switch action.Kind {
	case ActionCreate:
		return rollbackList(action.CreateOps, func(op CreateOperation) (string, error) {
			return rollbackCreate(op.Path, op.IsDir)
		}, "create")
	case ActionRename:
		return rollbackList(action.RenameOps, func(op RenameOperation) (string, error) {
			return rollbackRename(op.OldPath, op.NewPath)
		}, "rename")
	case ActionCopy:
		return rollbackList(action.CopyOps, func(op CopyOperation) (string, error) {
			isDir := false
			if info, err := os.Stat(op.TargetPath); err == nil {
				isDir = info.IsDir()
			}
			return rollbackCreate(op.TargetPath, isDir)
		}, "copy")
	case ActionMove:
		return rollbackList(action.MoveOps, func(op MoveOperation) (string, error) {
			return rollbackRename(op.SourcePath, op.TargetPath)
		}, "move")
	}
	return "", fmt.Errorf("unknown action kind %d", action.Kind)
}

// rollbackList reverses ops and aggregates per-operation results: if any
// error occurred, their messages are joined with "; " and returned as
// the error; otherwise a single result returns its own message verbatim,
// and N>1 results collapse into a "Rolled back N <label> operations"
// summary.
func rollbackList[T any](ops []T, rollback func(T) (string, error), label string) (string, error) {
	var successes []string
	var errs []string

	for i := len(ops) - 1; i >= 0; i-- {
		msg, err := rollback(ops[i])
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		successes = append(successes, msg)
	}

	debug.Log(debug.JOURNAL, "rollback %s: %d ok, %d failed", label, len(successes), len(errs))

	if len(errs) > 0 {
		return "", fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	if len(successes) == 1 {
		return successes[0], nil
	}
	return fmt.Sprintf("Rolled back %d %s operations", len(successes), label), nil
}

func rollbackCreate(path string, isDir bool) (string, error) {
	if _, err := os.Lstat(path); err != nil {
		return "", fmt.Errorf("cannot rollback create: %s no longer exists", path)
	}

	var err error
	if isDir {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete %s: %w", path, err)
	}

	kind := "file"
	if isDir {
		kind = "directory"
	}
	return fmt.Sprintf("Deleted %s '%s'", kind, path), nil
}

func rollbackRename(originalPath, currentPath string) (string, error) {
	if _, err := os.Lstat(currentPath); err != nil {
		return "", fmt.Errorf("cannot rollback rename: %s no longer exists", currentPath)
	}
	if _, err := os.Lstat(originalPath); err == nil {
		return "", fmt.Errorf("cannot rollback rename: %s already exists", originalPath)
	}

	if err := os.Rename(currentPath, originalPath); err != nil {
		return "", fmt.Errorf("failed to rename %s back to %s: %w", currentPath, originalPath, err)
	}
	return fmt.Sprintf("Renamed '%s' back to '%s'", currentPath, originalPath), nil
}
