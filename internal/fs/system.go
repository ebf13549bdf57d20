// Package fs runs directory listing on a worker goroutine so the UI loop
// never blocks on disk I/O. Each response echoes the generation counter
// of its request; System itself does not discard stale responses.
package fs

import (
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/kiorg/kiorg/internal/debug"
)

// OpType distinguishes the one request kind System currently serves.
// Recursive filesystem search is out of scope; System only ever lists a
// single directory's direct children.
type OpType int

const (
	FetchDir OpType = iota
)

type Request struct {
	Op   OpType
	Path string
	Gen  int64 // generation counter to track stale requests
}

type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

type Response struct {
	Op      OpType
	Path    string
	Entries []Entry
	Err     error
	Gen     int64 // generation counter echoed from the request
}

type System struct {
	RequestChan  chan Request
	ResponseChan chan Response
}

func NewSystem() *System {
	return &System{
		RequestChan:  make(chan Request, 10),
		ResponseChan: make(chan Response, 10),
	}
}

func (s *System) Start() {
	for req := range s.RequestChan {
		debug.Log(debug.FS, "Request: op=%d path=%q gen=%d", req.Op, req.Path, req.Gen)

		switch req.Op {
		case FetchDir:
			resp := s.fetchDir(req.Path)
			resp.Gen = req.Gen
			debug.Log(debug.FS, "FetchDir response: path=%q entries=%d gen=%d err=%v",
				resp.Path, len(resp.Entries), resp.Gen, resp.Err)
			s.ResponseChan <- resp
		}
	}
}

// skipPrefixes lists pseudo-filesystem and system roots.
var skipPrefixes = []string{"/dev", "/proc", "/sys", "/run", "/snap", "/boot", "/lost+found"}

// shouldSkipPath reports whether path is one of skipPrefixes or lies
// beneath one of them.
func shouldSkipPath(path string) bool {
	for _, p := range skipPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (s *System) fetchDir(path string) Response {
	debug.Log(debug.FS, "fetchDir: reading %q", path)

	var result []Entry
	var mu sync.Mutex

	conf := &fastwalk.Config{
		Follow: true, // follow symlinks to get target info
	}

	pathLen := len(path)

	err := fastwalk.Walk(conf, path, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.FS_ENTRY, "fetchDir: walk error at %q: %v", fullPath, err)
			return nil // skip errors, continue walking
		}

		if fullPath == path {
			return nil
		}

		// Only process direct children (depth 1). fullPath starts with
		// path, so a remainder containing a separator means a nested entry.
		relStart := pathLen
		if relStart < len(fullPath) && (fullPath[relStart] == '/' || fullPath[relStart] == '\\') {
			relStart++
		}
		rel := fullPath[relStart:]
		if strings.ContainsAny(rel, "/\\") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// Fall back to lstat for broken symlinks.
			info, err = os.Lstat(fullPath)
			if err != nil {
				debug.Log(debug.FS_ENTRY, "fetchDir: skipping %q: stat error: %v", d.Name(), err)
				return nil
			}
			debug.Log(debug.FS_ENTRY, "fetchDir: %q: using lstat (symlink target inaccessible)", d.Name())
		}

		isDir := info.IsDir()

		debug.Log(debug.FS_ENTRY, "fetchDir: %q isDir=%v size=%d mode=%s",
			d.Name(), isDir, info.Size(), info.Mode())

		mu.Lock()
		result = append(result, Entry{
			Name:    d.Name(),
			Path:    fullPath,
			IsDir:   isDir,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})

	if err != nil {
		debug.Log(debug.FS, "fetchDir: walk error: %v", err)
		return Response{Op: FetchDir, Path: path, Err: err}
	}

	debug.Log(debug.FS, "fetchDir: returning %d entries", len(result))
	return Response{Op: FetchDir, Path: path, Entries: result}
}
