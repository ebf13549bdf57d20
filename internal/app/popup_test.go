package app

import "testing"

func TestOpenTeleport(t *testing.T) {
	p := OpenTeleport()
	if p.Kind != PopupTeleport || !p.IsOpen() {
		t.Errorf("OpenTeleport() = %+v", p)
	}
}

func TestOpenRename(t *testing.T) {
	p := OpenRename("/a/old.txt", "old.txt")
	if p.Kind != PopupRename || p.RenameTarget != "/a/old.txt" || p.RenameInput != "old.txt" {
		t.Errorf("OpenRename() = %+v", p)
	}
}

func TestDeleteConfirm_TwoStageFlow(t *testing.T) {
	p := OpenDeleteConfirm([]string{"/a", "/b"})
	if p.Kind != PopupDeleteConfirm || p.DeleteStage != DeleteInitial {
		t.Fatalf("OpenDeleteConfirm() = %+v", p)
	}

	p.AdvanceDelete()
	if p.DeleteStage != DeleteRecursiveConfirm {
		t.Errorf("after AdvanceDelete: stage = %v, want DeleteRecursiveConfirm", p.DeleteStage)
	}

	// A second advance is a no-op.
	p.AdvanceDelete()
	if p.DeleteStage != DeleteRecursiveConfirm {
		t.Errorf("second AdvanceDelete should be a no-op, got stage = %v", p.DeleteStage)
	}
}

func TestAdvanceDelete_NoopOnOtherPopup(t *testing.T) {
	p := OpenTeleport()
	p.AdvanceDelete()
	if p.Kind != PopupTeleport {
		t.Errorf("AdvanceDelete should not affect a non-delete popup, got %+v", p)
	}
}

func TestNeedsRecursiveConfirm(t *testing.T) {
	nonEmpty := map[string]bool{"/a": true}
	if !NeedsRecursiveConfirm([]string{"/a", "/b"}, func(p string) bool { return nonEmpty[p] }) {
		t.Error("expected true: one target is a non-empty directory")
	}
	if NeedsRecursiveConfirm([]string{"/b", "/c"}, func(p string) bool { return nonEmpty[p] }) {
		t.Error("expected false: no target is a non-empty directory")
	}
}

func TestOpenConflict_ResolveUnblocksChannel(t *testing.T) {
	p, ch := OpenConflict("/src/a.txt", "/dst/a.txt", 3)
	if p.Kind != PopupConflict || p.ConflictRemaining != 3 {
		t.Fatalf("OpenConflict() = %+v", p)
	}

	p.ResolveConflict(ConflictReplace)
	got, ok := <-ch
	if !ok || got != ConflictReplace {
		t.Errorf("channel result = %v, %v; want ConflictReplace, true", got, ok)
	}
	if _, stillOpen := <-ch; stillOpen {
		t.Error("expected channel to be closed after resolution")
	}
}

func TestResolveConflict_NoopWhenNotAConflictPopup(t *testing.T) {
	p := OpenTeleport()
	p.ResolveConflict(ConflictSkip) // must not panic
}

func TestOpenPluginError(t *testing.T) {
	p := OpenPluginError("img-preview", "handshake failed")
	if p.Kind != PopupPluginError || p.PluginErrorName != "img-preview" || p.PluginErrorMessage != "handshake failed" {
		t.Errorf("OpenPluginError() = %+v", p)
	}
}

func TestOpenWith(t *testing.T) {
	p := OpenWith("/a/file.txt")
	if p.Kind != PopupOpenWith || p.OpenWithTarget != "/a/file.txt" {
		t.Errorf("OpenWith() = %+v", p)
	}
}

func TestClose(t *testing.T) {
	p := Close()
	if p.Kind != PopupNone || p.IsOpen() {
		t.Errorf("Close() = %+v", p)
	}
}
