package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath_Empty(t *testing.T) {
	if got := ExpandPath("", "/current", "/home"); got != "/current" {
		t.Errorf("ExpandPath(\"\") = %q, want /current", got)
	}
	if got := ExpandPath("   ", "/current", "/home"); got != "/current" {
		t.Errorf("ExpandPath(whitespace) = %q, want /current", got)
	}
}

func TestExpandPath_Home(t *testing.T) {
	if got := ExpandPath("~", "/current", "/home/user"); got != "/home/user" {
		t.Errorf("ExpandPath(~) = %q, want /home/user", got)
	}
	if got := ExpandPath("~/docs", "/current", "/home/user"); got != "/home/user/docs" {
		t.Errorf("ExpandPath(~/docs) = %q, want /home/user/docs", got)
	}
}

func TestExpandPath_Absolute(t *testing.T) {
	if got := ExpandPath("/etc/passwd", "/current", "/home"); got != "/etc/passwd" {
		t.Errorf("ExpandPath(absolute) = %q, want /etc/passwd", got)
	}
}

func TestExpandPath_Relative(t *testing.T) {
	got := ExpandPath("subdir", "/current/dir", "/home")
	want := filepath.Clean("/current/dir/subdir")
	if got != want {
		t.Errorf("ExpandPath(relative) = %q, want %q", got, want)
	}
}

func TestExpandPath_RelativeDotDot(t *testing.T) {
	got := ExpandPath("../sibling", "/current/dir", "/home")
	want := filepath.Clean("/current/sibling")
	if got != want {
		t.Errorf("ExpandPath(../sibling) = %q, want %q", got, want)
	}
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if exists, isDir := ValidatePath(dir); !exists || !isDir {
		t.Errorf("ValidatePath(dir) = %v, %v; want true, true", exists, isDir)
	}
	if exists, isDir := ValidatePath(file); !exists || isDir {
		t.Errorf("ValidatePath(file) = %v, %v; want true, false", exists, isDir)
	}
	if exists, _ := ValidatePath(filepath.Join(dir, "ghost")); exists {
		t.Error("ValidatePath on a nonexistent path should report exists=false")
	}
}

func TestIsAbsolutePath_Unix(t *testing.T) {
	if !isAbsolutePath("/a/b") {
		t.Error("expected /a/b to be absolute")
	}
	if isAbsolutePath("a/b") {
		t.Error("expected a/b to not be absolute")
	}
	if isAbsolutePath("") {
		t.Error("expected empty string to not be absolute")
	}
}
