package app

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/kiorg/kiorg/internal/debug"
	"github.com/kiorg/kiorg/internal/model"
)

const (
	DirPermission  = 0o755
	FilePermission = 0o644
)

// ConflictResolution is how the caller wants a name collision handled.
type ConflictResolution int

const (
	ConflictAbort ConflictResolution = iota
	ConflictReplace
	ConflictKeepBoth
	ConflictSkip
)

// ConflictResolver is asked once per colliding destination; "remaining"
// is how many more sources are queued after this one, so a resolver can
// offer an "apply to all" choice without FileOps knowing about any UI.
type ConflictResolver func(src, dst string, srcInfo, dstInfo os.FileInfo, remaining int) ConflictResolution

// ProgressFunc is called as bytes move; active=false with zero label
// marks completion.
type ProgressFunc func(active bool, label string, current, total int64)

// FileOps performs filesystem mutations and journals every action that
// can be meaningfully undone (create, rename, copy, move) onto the
// owning tab's action history. Deletions are not journaled: there is no
// undo for a real removal without a trash layer, which is out of scope
// here.
type FileOps struct {
	Progress ProgressFunc
	Resolve  ConflictResolver
}

func (f *FileOps) progress(active bool, label string, current, total int64) {
	if f.Progress != nil {
		f.Progress(active, label, current, total)
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func deleteItem(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// CreateFile makes an empty file at dir/name and journals an
// ActionCreate.
func (f *FileOps) CreateFile(tab *model.Tab, dir, name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	path := filepath.Join(dir, name)
	if pathExists(path) {
		return fmt.Errorf("file already exists: %s", name)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	file.Close()

	tab.ActionHistory.AddAction(model.ActionType{
		Kind:      model.ActionCreate,
		CreateOps: []model.CreateOperation{{Path: path, IsDir: false}},
	})
	return nil
}

// CreateFolder makes a directory at dir/name and journals an
// ActionCreate.
func (f *FileOps) CreateFolder(tab *model.Tab, dir, name string) error {
	if name == "" {
		return fmt.Errorf("folder name cannot be empty")
	}
	path := filepath.Join(dir, name)
	if pathExists(path) {
		return fmt.Errorf("folder already exists: %s", name)
	}
	if err := os.Mkdir(path, DirPermission); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	tab.ActionHistory.AddAction(model.ActionType{
		Kind:      model.ActionCreate,
		CreateOps: []model.CreateOperation{{Path: path, IsDir: true}},
	})
	return nil
}

// Rename moves oldPath to newPath and journals an ActionRename.
func (f *FileOps) Rename(tab *model.Tab, oldPath, newPath string) error {
	if oldPath == "" || newPath == "" || oldPath == newPath {
		return nil
	}
	if pathExists(newPath) {
		return fmt.Errorf("cannot rename: %s already exists", filepath.Base(newPath))
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	tab.ActionHistory.AddAction(model.ActionType{
		Kind:      model.ActionRename,
		RenameOps: []model.RenameOperation{{OldPath: oldPath, NewPath: newPath}},
	})
	debug.Log(debug.JOURNAL, "renamed %s -> %s", oldPath, newPath)
	return nil
}

// Delete removes paths permanently. Not journaled: see FileOps doc.
func (f *FileOps) Delete(paths []string) (deleted []string, err error) {
	var errs []string
	for i, path := range paths {
		if !pathExists(path) {
			errs = append(errs, fmt.Sprintf("%s: does not exist", filepath.Base(path)))
			continue
		}
		f.progress(true, fmt.Sprintf("Deleting (%d/%d) %s", i+1, len(paths), filepath.Base(path)), 0, 0)
		if derr := deleteItem(path); derr != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", filepath.Base(path), derr))
			continue
		}
		deleted = append(deleted, path)
	}
	f.progress(false, "", 0, 0)
	if len(errs) > 0 {
		return deleted, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return deleted, nil
}

// Clipboard is the pending bulk operation a tab can paste.
type Clipboard struct {
	Paths []string
	Cut   bool
}

// Paste copies (or moves, if clip.Cut) every path in clip into dstDir,
// resolving name collisions via f.Resolve, and journals exactly one
// ActionCopy or ActionMove covering every successfully placed item.
func (f *FileOps) Paste(tab *model.Tab, clip Clipboard, dstDir string) error {
	if len(clip.Paths) == 0 {
		return nil
	}

	var copyOps []model.CopyOperation
	var moveOps []model.MoveOperation
	var errs []string
	aborted := false

	for i, src := range clip.Paths {
		if aborted {
			break
		}
		dstName := filepath.Base(src)
		dst := filepath.Join(dstDir, dstName)
		sameFile := src == dst

		srcInfo, err := os.Stat(src)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", filepath.Base(src), err))
			continue
		}

		dstInfo, collides := os.Stat(dst)
		if collides == nil || sameFile {
			if sameFile {
				dstInfo = srcInfo
			}
			switch f.resolveOrAbort(src, dst, srcInfo, dstInfo, len(clip.Paths)-i) {
			case ConflictReplace:
				if sameFile {
					errs = append(errs, "cannot replace a file with itself")
					continue
				}
				deleteItem(dst)
			case ConflictKeepBoth:
				dst = nextAvailableName(dstDir, dstName)
			case ConflictSkip:
				continue
			case ConflictAbort:
				aborted = true
				continue
			}
		}
		if aborted {
			break
		}

		label := "Copying"
		if clip.Cut {
			label = "Moving"
		}
		progressLabel := fmt.Sprintf("%s (%d/%d) %s", label, i+1, len(clip.Paths), filepath.Base(src))

		if srcInfo.IsDir() {
			f.progress(true, progressLabel, 0, 0)
			err = f.copyDir(src, dst, clip.Cut)
		} else {
			f.progress(true, progressLabel, 0, srcInfo.Size())
			err = f.copyFile(src, dst, clip.Cut)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", filepath.Base(src), err))
			continue
		}

		if clip.Cut {
			moveOps = append(moveOps, model.MoveOperation{SourcePath: src, TargetPath: dst})
		} else {
			copyOps = append(copyOps, model.CopyOperation{SourcePath: src, TargetPath: dst})
		}
	}
	f.progress(false, "", 0, 0)

	if len(copyOps) > 0 {
		tab.ActionHistory.AddAction(model.ActionType{Kind: model.ActionCopy, CopyOps: copyOps})
	}
	if len(moveOps) > 0 {
		tab.ActionHistory.AddAction(model.ActionType{Kind: model.ActionMove, MoveOps: moveOps})
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Move relocates sources into dstDir (e.g. drag-and-drop) and journals
// exactly one ActionMove covering every successfully relocated item.
func (f *FileOps) Move(tab *model.Tab, sources []string, dstDir string) error {
	if len(sources) == 0 {
		return nil
	}
	var moveOps []model.MoveOperation
	var errs []string
	aborted := false

	for i, src := range sources {
		if aborted {
			break
		}
		dstName := filepath.Base(src)
		dst := filepath.Join(dstDir, dstName)

		if src == dst {
			continue
		}
		if strings.HasPrefix(dst, src+string(filepath.Separator)) {
			errs = append(errs, fmt.Sprintf("%s: cannot move into itself", filepath.Base(src)))
			continue
		}

		srcInfo, err := os.Stat(src)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", filepath.Base(src), err))
			continue
		}

		if dstInfo, collides := os.Stat(dst); collides == nil {
			switch f.resolveOrAbort(src, dst, srcInfo, dstInfo, len(sources)-i) {
			case ConflictReplace:
				deleteItem(dst)
			case ConflictKeepBoth:
				dst = nextAvailableName(dstDir, dstName)
			case ConflictSkip:
				continue
			case ConflictAbort:
				aborted = true
				continue
			}
		}
		if aborted {
			break
		}

		progressLabel := fmt.Sprintf("Moving (%d/%d) %s", i+1, len(sources), filepath.Base(src))
		if srcInfo.IsDir() {
			f.progress(true, progressLabel, 0, 0)
			err = f.copyDir(src, dst, true)
		} else {
			f.progress(true, progressLabel, 0, srcInfo.Size())
			err = f.copyFile(src, dst, true)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", filepath.Base(src), err))
			continue
		}
		moveOps = append(moveOps, model.MoveOperation{SourcePath: src, TargetPath: dst})
	}
	f.progress(false, "", 0, 0)

	if len(moveOps) > 0 {
		tab.ActionHistory.AddAction(model.ActionType{Kind: model.ActionMove, MoveOps: moveOps})
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func (f *FileOps) resolveOrAbort(src, dst string, srcInfo, dstInfo os.FileInfo, remaining int) ConflictResolution {
	if f.Resolve == nil {
		return ConflictAbort
	}
	return f.Resolve(src, dst, srcInfo, dstInfo, remaining)
}

func nextAvailableName(dir, name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for j := 1; ; j++ {
		candidate := filepath.Join(dir, base+"_copy"+strconv.Itoa(j)+ext)
		if !pathExists(candidate) {
			return candidate
		}
	}
}

func (f *FileOps) copyFile(src, dst string, move bool) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	var written int64
	if _, err := io.Copy(dstFile, io.TeeReader(srcFile, progressTee(&written))); err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode()); err != nil {
		return err
	}
	if move {
		return os.Remove(src)
	}
	return nil
}

// progressTee returns a writer that just accumulates byte counts; wired
// up this way so copyFile/copyDir don't need direct access to the
// ProgressFunc closure captured state.
func progressTee(counter *int64) io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		atomic.AddInt64(counter, int64(len(p)))
		return len(p), nil
	})
}

type writerFunc func(p []byte) (int, error)

func (w writerFunc) Write(p []byte) (int, error) { return w(p) }

func (f *FileOps) copyDir(src, dst string, move bool) error {
	type copyItem struct {
		srcPath string
		dstPath string
		isDir   bool
		mode    iofs.FileMode
	}
	var items []copyItem
	var itemsMu sync.Mutex
	var totalSize atomic.Int64

	conf := &fastwalk.Config{Follow: true}
	srcLen := len(src)

	err := fastwalk.Walk(conf, src, func(fullPath string, d iofs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		relPath := fullPath[srcLen:]
		if len(relPath) > 0 && (relPath[0] == '/' || relPath[0] == '\\') {
			relPath = relPath[1:]
		}
		if relPath == "" {
			return nil
		}
		dstPath := filepath.Join(dst, relPath)
		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			return nil
		}
		itemsMu.Lock()
		if info.IsDir() {
			items = append(items, copyItem{srcPath: fullPath, dstPath: dstPath, isDir: true, mode: info.Mode()})
		} else {
			totalSize.Add(info.Size())
			items = append(items, copyItem{srcPath: fullPath, dstPath: dstPath, isDir: false, mode: info.Mode()})
		}
		itemsMu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, DirPermission); err != nil {
		return err
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].isDir != items[j].isDir {
			return items[i].isDir
		}
		return len(items[i].dstPath) < len(items[j].dstPath)
	})

	for _, item := range items {
		if item.isDir {
			if err := os.MkdirAll(item.dstPath, item.mode); err != nil {
				return err
			}
			continue
		}
		if err := f.copyFile(item.srcPath, item.dstPath, false); err != nil {
			return err
		}
	}

	if move {
		return os.RemoveAll(src)
	}
	return nil
}
