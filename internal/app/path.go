package app

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandPath expands and normalizes a path typed by the user relative to
// currentPath and homePath, handling "~", relative segments ("./", "../"),
// absolute paths, and Windows drive letters.
func ExpandPath(input, currentPath, homePath string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return currentPath
	}

	if strings.HasPrefix(input, "~") {
		if input == "~" {
			return homePath
		}
		if strings.HasPrefix(input, "~/") || strings.HasPrefix(input, "~\\") {
			return filepath.Clean(filepath.Join(homePath, input[2:]))
		}
	}

	if isAbsolutePath(input) {
		return filepath.Clean(input)
	}

	return filepath.Clean(filepath.Join(currentPath, input))
}

// ValidatePath reports whether path exists and, if so, whether it is a
// directory.
func ValidatePath(path string) (exists bool, isDir bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return true, info.IsDir()
}

// isAbsolutePath reports whether path is absolute, on both Unix and
// Windows (drive-letter and UNC forms).
func isAbsolutePath(path string) bool {
	if len(path) == 0 {
		return false
	}

	if path[0] == '/' {
		return true
	}

	if runtime.GOOS == "windows" {
		if len(path) >= 2 && isLetter(path[0]) && path[1] == ':' {
			return true
		}
		if len(path) >= 2 && path[0] == '\\' && path[1] == '\\' {
			return true
		}
	}

	return false
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
