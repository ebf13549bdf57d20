package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManager_Load_CreatesDefaultWhenMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(ConfigPath()); err != nil {
		t.Errorf("expected a default config.toml to be written, stat err = %v", err)
	}
	if got := m.Get(); !got.General.RestoreLastPath {
		t.Error("expected default config's RestoreLastPath to be true")
	}
}

func TestManager_Load_ReadsExistingOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "kiorg")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	toml := `[general]
show_dotfiles = true
confirm_delete = false
restore_last_path = true
default_sort = "size"
sort_ascending = true
group_dirs_first = true
`
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m.Get()
	if !got.General.ShowDotfiles || got.General.ConfirmDelete || got.General.DefaultSort != "size" {
		t.Errorf("Get() = %+v", got.General)
	}
}

func TestManager_Load_MalformedConfigReturnsParseError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "kiorg")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("not [ valid toml"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	m := NewManager()
	err := m.Load()
	if err == nil {
		t.Fatal("expected a parse error for malformed config.toml")
	}
	var pe *ParseError
	if perr, ok := err.(*ParseError); !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	} else {
		pe = perr
	}
	if m.ParseError() != pe {
		t.Error("ParseError() should return the same error recorded during Load")
	}
	// Defaults are still usable after a parse error.
	if got := m.Get(); got.General.DefaultSort != "name" {
		t.Errorf("expected defaults to remain in effect, got %+v", got.General)
	}
}

func TestManager_SaveThenLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	m2 := NewManager()
	if err := m2.Load(); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if m2.Get().General.DefaultSort != m.Get().General.DefaultSort {
		t.Errorf("round-tripped config diverged: %+v vs %+v", m2.Get().General, m.Get().General)
	}
}

func TestGenerateConfig_BacksUpExisting(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if backup, err := GenerateConfig(); err != nil || backup != "" {
		t.Fatalf("first GenerateConfig: backup=%q err=%v, want empty backup and no error", backup, err)
	}

	backup, err := GenerateConfig()
	if err != nil {
		t.Fatalf("second GenerateConfig: %v", err)
	}
	if backup == "" {
		t.Fatal("expected a non-empty backup path on the second call")
	}
	if _, err := os.Stat(backup); err != nil {
		t.Errorf("expected backup file to exist at %s, err = %v", backup, err)
	}
}

func TestDefaultConfig_ShortcutsBuildCleanAutomaton(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := BuildAutomaton(cfg.Shortcuts); err != nil {
		t.Errorf("default shortcut bindings must build a conflict-free automaton: %v", err)
	}
}
