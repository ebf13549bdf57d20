package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"

	"github.com/kiorg/kiorg/internal/config"
	"github.com/kiorg/kiorg/internal/debug"
	"github.com/kiorg/kiorg/internal/fs"
	"github.com/kiorg/kiorg/internal/model"
	"github.com/kiorg/kiorg/internal/persist"
	"github.com/kiorg/kiorg/internal/plugin"
	"github.com/kiorg/kiorg/internal/preview"
	"github.com/kiorg/kiorg/internal/store"
	"github.com/kiorg/kiorg/internal/watcher"
)

// UIEvent is what a frame of the widget tree reports back: at most one
// user intent per frame. Action is the zero value (no intent) on most
// frames.
type UIEvent struct {
	Action       config.ShortcutAction
	NavigatePath string
	// SelectIndex is the entry the user clicked or hovered this frame, or
	// -1 if this frame carries no selection change.
	SelectIndex   int
	SortColumn    model.SortColumn
	RenameInput   string
	TeleportQuery string
	DeleteConfirm bool
	ConflictRes   ConflictResolution
}

// ViewState is the read-only snapshot the widget tree lays out from
// every frame. The App owns the fields underneath it; the renderer must
// not mutate them.
type ViewState struct {
	Tabs      *model.TabManager
	Popup     Popup
	Preview   preview.Content
	Favorites []string
	Drives    []fs.Drive
	Config    config.Config
	ConfigErr error
}

// Renderer is the one contract the core exposes to the immediate-mode
// widget layer: lay out the current state for this frame and report
// back whatever the user did. Pixel-level layout, theme, and widget
// construction all live on the other side of this interface.
type Renderer interface {
	Layout(gtx interface{}, state *ViewState) UIEvent
}

// App is the central coordinator: it owns every subsystem (tabs,
// preview engine, plugin host, filesystem watcher, config, persistent
// store) and the glue between them. It does not know how anything is
// drawn.
type App struct {
	window *app.Window

	fsys     *fs.System
	db       *store.DB
	cfg      *config.Manager
	tabs     *model.TabManager
	preview  *preview.Engine
	plugins  *plugin.Manager
	watch    *watcher.Watcher
	fileOps  *FileOps
	rollback model.RollbackManager

	shortcuts    *config.Node
	shortcutCur  *config.Node
	genCounter   atomic.Int64
	homePath     string
	previewRx    <-chan preview.Result
	popup        Popup
	configErr    error
	previewCache preview.Content
	clipboard    Clipboard
	drives       []fs.Drive
	favorites    []string
}

// NewApp constructs every subsystem, loads configuration, and starts the
// filesystem watcher and plugin host. It does not open the database,
// start the listing and store workers, or navigate anywhere — Run does
// that. A malformed config.toml is returned as an error.
func NewApp() (*App, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("app: resolve home dir: %w", err)
	}

	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(); err != nil {
		log.Printf("app: config load warning: %v", err)
	}
	if perr := cfgMgr.ParseError(); perr != nil {
		return nil, fmt.Errorf("app: invalid config: %w", perr)
	}
	cfg := cfgMgr.Get()

	automaton, err := config.BuildAutomaton(cfg.Shortcuts)
	if err != nil {
		return nil, fmt.Errorf("app: invalid shortcut config: %w", err)
	}

	w, err := watcher.New(watcher.DefaultDebounce)
	if err != nil {
		return nil, fmt.Errorf("app: start filesystem watcher: %w", err)
	}

	pluginDir := cfg.Plugins.Dir
	if pluginDir == "" {
		pluginDir = filepath.Join(config.ConfigDir(), "plugins")
	}
	var pluginMgr *plugin.Manager
	if cfg.Plugins.Enabled {
		pluginMgr, err = plugin.NewManager(context.Background(), pluginDir)
		if err != nil {
			log.Printf("app: plugin host warning: %v", err)
			pluginMgr = &plugin.Manager{}
		}
	} else {
		pluginMgr = &plugin.Manager{}
	}

	a := &App{
		window:    new(app.Window),
		fsys:      fs.NewSystem(),
		db:        store.NewDB(),
		cfg:       cfgMgr,
		preview:   preview.NewEngine(pluginMgr),
		plugins:   pluginMgr,
		watch:     w,
		fileOps:   &FileOps{},
		shortcuts: automaton,
		homePath:  home,
		configErr: cfgMgr.ParseError(),
	}
	a.shortcutCur = a.shortcuts
	a.fileOps.Progress = a.onProgress
	a.fileOps.Resolve = a.onConflict

	return a, nil
}

// Run opens the database, starts every background worker, restores the
// last session if configured to, and drives the GUI event loop,
// delegating all layout to renderer.
func (a *App) Run(renderer Renderer, startPath string) error {
	if debug.Enabled {
		log.Println("starting kiorg in debug mode")
		debug.Log(debug.APP, "enabled categories: %v", debug.ListEnabled())
	}

	dbPath := filepath.Join(config.ConfigDir(), "kiorg.db")
	if err := a.db.Open(dbPath); err != nil {
		log.Printf("app: failed to open database: %v", err)
	}
	defer a.db.Close()

	go a.fsys.Start()
	go a.db.Start()

	restored := persist.State{}
	if a.cfg.Get().General.RestoreLastPath {
		if s, err := persist.Load(config.ConfigDir()); err == nil {
			restored = s
		}
	}

	if startPath == "" {
		startPath = a.restoreStartPath(restored)
	}
	a.tabs = a.initialTabManager(startPath, restored)

	for _, t := range a.tabs.Tabs {
		if err := a.watch.Watch(t.CurrentPath); err != nil {
			debug.Log(debug.FS, "watch %s failed: %v", t.CurrentPath, err)
		}
		a.refreshTab(t)
	}

	a.drives = fs.ListDrives()
	a.db.RequestChan <- store.Request{Op: store.FetchFavorites}

	go a.processBackgroundEvents()

	var ops op.Ops
	for {
		switch e := a.window.Event().(type) {
		case app.DestroyEvent:
			a.Shutdown()
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			a.pollKeys(gtx)
			state := a.viewState()
			evt := renderer.Layout(gtx, state)
			a.handleUIEvent(evt)
			e.Frame(gtx.Ops)
		}
	}
}

// pollKeys drains every key event gio delivered this frame and feeds
// each press through the shortcut resolver. Called before the widget
// tree lays out so a shortcut-driven mutation is reflected in the same
// frame it fired.
func (a *App) pollKeys(gtx layout.Context) {
	for {
		e, ok := gtx.Event(key.Filter{Focus: true, Name: ""})
		if !ok {
			return
		}
		if k, ok := e.(key.Event); ok && k.State == key.Press {
			a.HandleKey(k)
		}
	}
}

func (a *App) restoreStartPath(s persist.State) string {
	if len(s.TabManager.TabStates) > 0 {
		idx := s.TabManager.CurrentTabIdx
		if idx < 0 || idx >= len(s.TabManager.TabStates) {
			idx = 0
		}
		if p := s.TabManager.TabStates[idx].CurrentPath; p != "" {
			return p
		}
	}
	if a.homePath != "" {
		return a.homePath
	}
	wd, _ := os.Getwd()
	return wd
}

func (a *App) initialTabManager(startPath string, s persist.State) *model.TabManager {
	if len(s.TabManager.TabStates) == 0 {
		return model.NewTabManager(startPath)
	}
	tm := &model.TabManager{}
	for _, ts := range s.TabManager.TabStates {
		tm.NewTab(ts.CurrentPath)
	}
	if s.TabManager.CurrentTabIdx >= 0 && s.TabManager.CurrentTabIdx < len(tm.Tabs) {
		tm.CurrentIdx = s.TabManager.CurrentTabIdx
	}
	return tm
}

func (a *App) viewState() *ViewState {
	return &ViewState{
		Tabs:      a.tabs,
		Popup:     a.popup,
		Preview:   a.previewCache,
		Favorites: a.favorites,
		Drives:    a.drives,
		Config:    a.cfg.Get(),
		ConfigErr: a.configErr,
	}
}

// AddFavorite bookmarks path, refreshing the favorites list once the
// store confirms the write.
func (a *App) AddFavorite(path string) {
	a.db.RequestChan <- store.Request{Op: store.AddFavorite, Path: path}
}

// RemoveFavorite un-bookmarks path, refreshing the favorites list once
// the store confirms the write.
func (a *App) RemoveFavorite(path string) {
	a.db.RequestChan <- store.Request{Op: store.RemoveFavorite, Path: path}
}

// Shutdown stops every background worker and writes the session
// snapshot (open tabs, current tab index, bookmarks, visit history) to
// state.json.
func (a *App) Shutdown() {
	a.preview.CancelInFlight()
	a.plugins.Shutdown()
	a.watch.Close()

	if a.tabs == nil {
		return
	}
	tabStates := make([]persist.TabState, len(a.tabs.Tabs))
	for i, t := range a.tabs.Tabs {
		tabStates[i] = persist.TabState{CurrentPath: t.CurrentPath}
	}

	var visitEntries []persist.VisitHistoryEntry
	if history, err := a.db.VisitHistory(); err != nil {
		debug.Log(debug.STORE, "shutdown: fetch visit history failed: %v", err)
	} else {
		visitEntries = make([]persist.VisitHistoryEntry, len(history))
		for i, h := range history {
			visitEntries[i] = persist.VisitHistoryEntry{Path: h.Path, Count: h.Count, AccessedTS: h.AccessedTS}
		}
	}

	state := persist.State{
		TabManager: persist.TabManagerState{
			TabStates:     tabStates,
			CurrentTabIdx: a.tabs.CurrentIdx,
		},
		Bookmarks:    a.favorites,
		VisitHistory: visitEntries,
	}
	if err := persist.Save(config.ConfigDir(), state); err != nil {
		log.Printf("app: failed to save session state: %v", err)
	}
}

// NavigateTab pushes path onto tab's history, retargets the filesystem
// watcher from its old directory, and requests a fresh listing.
func (a *App) NavigateTab(t *model.Tab, path string) {
	old := t.CurrentPath
	t.NavigateTo(path)
	if err := a.watch.Retarget(old, path); err != nil {
		debug.Log(debug.FS, "watch retarget %s -> %s failed: %v", old, path, err)
	}
	a.refreshTab(t)
	a.recordVisit(path)
}

func (a *App) refreshTab(t *model.Tab) {
	gen := a.genCounter.Add(1)
	a.fsys.RequestChan <- fs.Request{Op: fs.FetchDir, Path: t.CurrentPath, Gen: gen}
}

func (a *App) recordVisit(path string) {
	if err := a.db.RecordVisit(path, time.Now().Unix()); err != nil {
		debug.Log(debug.STORE, "record visit %s failed: %v", path, err)
	}
}

// Teleport ranks the durable visit history against query for the
// teleport popup.
func (a *App) Teleport(query string) ([]store.TeleportEntry, error) {
	history, err := a.db.VisitHistory()
	if err != nil {
		return nil, err
	}
	return store.Teleport(history, query), nil
}

// processBackgroundEvents drains the filesystem worker, the store's
// responses, and the watcher, applying each to model state and waking
// the frame loop (preview results are drained by awaitPreview). It never blocks the GUI thread: every channel read
// here happens off it.
func (a *App) processBackgroundEvents() {
	for {
		select {
		case resp, ok := <-a.fsys.ResponseChan:
			if !ok {
				return
			}
			a.applyFetchResponse(resp)
			a.window.Invalidate()

		case resp, ok := <-a.db.ResponseChan:
			if !ok {
				return
			}
			if resp.Op == store.FetchFavorites {
				if resp.Err != nil {
					debug.Log(debug.STORE, "favorites request failed: %v", resp.Err)
				} else {
					a.favorites = resp.Favorites
				}
			}
			a.window.Invalidate()

		case dir, ok := <-a.watch.Events():
			if !ok {
				return
			}
			a.onDirChanged(dir)
			a.window.Invalidate()
		}
	}
}

func (a *App) applyFetchResponse(resp fs.Response) {
	if resp.Err != nil {
		debug.Log(debug.FS, "fetch %s failed: %v", resp.Path, resp.Err)
		return
	}
	t := a.tabForPath(resp.Path)
	if t == nil {
		return
	}
	entries := make([]model.DirEntry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		info, err := os.Lstat(e.Path)
		if err != nil {
			continue
		}
		entries = append(entries, model.NewDirEntry(e.Path, info))
	}
	prevPath := ""
	if t.SelectedIndex >= 0 && t.SelectedIndex < len(t.Entries) {
		prevPath = t.Entries[t.SelectedIndex].Path
	}
	t.SetEntries(entries, prevPath)
}

func (a *App) tabForPath(path string) *model.Tab {
	if a.tabs == nil {
		return nil
	}
	for _, t := range a.tabs.Tabs {
		if t.CurrentPath == path {
			return t
		}
	}
	return nil
}

func (a *App) onDirChanged(dir string) {
	if t := a.tabForPath(dir); t != nil {
		a.refreshTab(t)
	}
}

// RequestPreview asks the preview engine to preview path, applying a
// cache hit immediately or draining the async result once it arrives.
func (a *App) RequestPreview(path string, targetWidth int, popup bool) {
	cached, rx := a.preview.RequestPreview(preview.Request{Path: path, TargetWidth: targetWidth, Popup: popup})
	if cached != nil {
		a.previewCache = *cached
		return
	}
	a.previewRx = rx
	go a.awaitPreview(rx, path)
}

func (a *App) awaitPreview(rx <-chan preview.Result, path string) {
	res, ok := <-rx
	if !ok {
		return
	}
	currentPath := ""
	if t := a.tabs.Current(); t != nil && t.SelectedIndex >= 0 && t.SelectedIndex < len(t.Entries) {
		currentPath = t.Entries[t.SelectedIndex].Path
	}
	content, apply := a.preview.Drain(res, currentPath)
	if apply {
		a.previewCache = content
		a.window.Invalidate()
	}
}

func (a *App) onProgress(active bool, label string, current, total int64) {
	debug.Log(debug.APP, "progress: active=%v label=%q %d/%d", active, label, current, total)
	a.window.Invalidate()
}

func (a *App) onConflict(src, dst string, srcInfo, dstInfo os.FileInfo, remaining int) ConflictResolution {
	p, ch := OpenConflict(src, dst, remaining)
	a.popup = p
	a.window.Invalidate()
	return <-ch
}

// Undo pops the current tab's most recent action and reverses it.
func (a *App) Undo(t *model.Tab) error {
	action, ok := t.ActionHistory.UndoLastAction()
	if !ok {
		return nil
	}
	msg, err := a.rollback.RollbackAction(action.Action)
	if err != nil {
		return err
	}
	debug.Log(debug.JOURNAL, "undo: %s", msg)
	a.refreshTab(t)
	return nil
}

// Redo replays the most recently undone action forward. There is no
// generic "redo" primitive on RollbackManager — a redo is the original
// mutation re-applied, which FileOps already knows how to do for every
// ActionKind it produces, so Redo simply re-executes each operation
// directly rather than rolling a rollback back.
func (a *App) Redo(t *model.Tab) error {
	action, ok := t.ActionHistory.RedoLastAction()
	if !ok {
		return nil
	}
	switch action.Action.Kind {
	case model.ActionCreate:
		for _, op := range action.Action.CreateOps {
			if op.IsDir {
				os.Mkdir(op.Path, DirPermission)
			} else {
				f, err := os.Create(op.Path)
				if err == nil {
					f.Close()
				}
			}
		}
	case model.ActionRename:
		for _, op := range action.Action.RenameOps {
			os.Rename(op.OldPath, op.NewPath)
		}
	case model.ActionCopy:
		for _, op := range action.Action.CopyOps {
			if info, err := os.Stat(op.SourcePath); err == nil && info.IsDir() {
				a.fileOps.copyDir(op.SourcePath, op.TargetPath, false)
			} else {
				a.fileOps.copyFile(op.SourcePath, op.TargetPath, false)
			}
		}
	case model.ActionMove:
		for _, op := range action.Action.MoveOps {
			os.Rename(op.SourcePath, op.TargetPath)
		}
	}
	a.refreshTab(t)
	return nil
}

// HandleKey steps the shortcut automaton by one chord and, on a
// completed sequence, dispatches the bound action. The cursor resets to
// the automaton root whenever a chord is unrecognized or a leaf fires,
// matching a prefix-keyed sequence (like "g g") never leaking into the
// next unrelated keystroke.
func (a *App) HandleKey(evt key.Event) {
	if a.popup.IsOpen() && a.popup.Kind != PopupTeleport {
		return // modal popups capture their own input outside the shortcut resolver
	}
	chord := config.ChordFromKeyEvent(evt)
	next, action, done, ok := config.Step(a.shortcutCur, chord)
	if !ok {
		a.shortcutCur = a.shortcuts
		return
	}
	if done {
		a.shortcutCur = a.shortcuts
		a.dispatchAction(action)
		return
	}
	a.shortcutCur = next
}

func (a *App) dispatchAction(action config.ShortcutAction) {
	t := a.tabs.Current()
	if t == nil {
		return
	}
	debug.Log(debug.HOTKEY, "dispatch action %s", action)
	switch action {
	case config.ActionGoBack:
		old := t.CurrentPath
		if path, ok := t.GoBack(); ok {
			if err := a.watch.Retarget(old, path); err != nil {
				debug.Log(debug.FS, "watch retarget %s -> %s failed: %v", old, path, err)
			}
			a.refreshTab(t)
		}
	case config.ActionGoForward:
		old := t.CurrentPath
		if path, ok := t.GoForward(); ok {
			if err := a.watch.Retarget(old, path); err != nil {
				debug.Log(debug.FS, "watch retarget %s -> %s failed: %v", old, path, err)
			}
			a.refreshTab(t)
		}
	case config.ActionGoHome:
		a.NavigateTab(t, a.homePath)
	case config.ActionRefresh:
		a.refreshTab(t)
	case config.ActionUndo:
		a.Undo(t)
	case config.ActionRedo:
		a.Redo(t)
	case config.ActionTeleport, config.ActionFocusSearch:
		a.popup = OpenTeleport()
	case config.ActionNewTab:
		a.tabs.NewTab(t.CurrentPath)
	case config.ActionCloseTab:
		a.tabs.CloseTab(a.tabs.CurrentIdx)
	case config.ActionNextTab:
		a.tabs.SwitchTo((a.tabs.CurrentIdx + 1) % len(a.tabs.Tabs))
	case config.ActionPrevTab:
		a.tabs.SwitchTo((a.tabs.CurrentIdx - 1 + len(a.tabs.Tabs)) % len(a.tabs.Tabs))
	case config.ActionEscape:
		a.popup = Close()

	case config.ActionMoveUp:
		a.moveSelection(t, -1)
	case config.ActionMoveDown:
		a.moveSelection(t, 1)
	case config.ActionMoveLeft:
		if parent := filepath.Dir(t.CurrentPath); parent != t.CurrentPath {
			a.NavigateTab(t, parent)
		}
	case config.ActionMoveRight, config.ActionOpen:
		a.activateSelection(t)

	case config.ActionCopy:
		a.clipboard = Clipboard{Paths: a.selectedPaths(t), Cut: false}
	case config.ActionCut:
		a.clipboard = Clipboard{Paths: a.selectedPaths(t), Cut: true}
	case config.ActionPaste:
		if len(a.clipboard.Paths) > 0 {
			if err := a.fileOps.Paste(t, a.clipboard, t.CurrentPath); err != nil {
				debug.Log(debug.APP, "paste failed: %v", err)
			}
			if a.clipboard.Cut {
				a.clipboard = Clipboard{}
			}
			a.refreshTab(t)
		}
	case config.ActionDeleteEntry:
		if paths := a.selectedPaths(t); len(paths) > 0 {
			a.popup = OpenDeleteConfirm(paths)
		}
	case config.ActionRename:
		if t.SelectedIndex >= 0 && t.SelectedIndex < len(t.Entries) {
			e := t.Entries[t.SelectedIndex]
			a.popup = OpenRename(e.Path, e.Name)
		}
	case config.ActionNewFile:
		a.popup = OpenCreate(false)
	case config.ActionNewFolder:
		a.popup = OpenCreate(true)
	case config.ActionSelectAll:
		for _, e := range t.Entries {
			t.MarkedEntries[e.Path] = struct{}{}
		}
	case config.ActionToggleHidden:
		a.cfg.Update(func(c *config.Config) { c.General.ShowDotfiles = !c.General.ShowDotfiles })
	case config.ActionTogglePreview:
		a.cfg.Update(func(c *config.Config) { c.Preview.Enabled = !c.Preview.Enabled })
	case config.ActionConfirm:
		a.confirmPopup(t)
	}
	a.window.Invalidate()
}

// moveSelection shifts the cursor by delta entries, clamped to the
// listing bounds, and requests a fresh preview for the newly selected
// entry.
func (a *App) moveSelection(t *model.Tab, delta int) {
	if len(t.Entries) == 0 {
		return
	}
	next := t.SelectedIndex + delta
	if next < 0 {
		next = 0
	}
	if next >= len(t.Entries) {
		next = len(t.Entries) - 1
	}
	a.selectEntry(t, next)
}

// selectEntry moves the cursor to i and, if the preview pane is
// enabled, kicks off a preview request for the newly selected entry.
func (a *App) selectEntry(t *model.Tab, i int) {
	t.UpdateSelection(i)
	if i < 0 || i >= len(t.Entries) {
		return
	}
	e := t.Entries[i]
	cfg := a.cfg.Get()
	if cfg.Preview.Enabled && e.Kind != model.KindDir {
		a.RequestPreview(e.Path, cfg.Preview.PopupWidth, false)
	}
}

// selectedPaths returns the marked entries, or — if nothing is marked —
// just the cursor's entry, matching how most file managers scope a bulk
// operation to "whatever is selected right now".
func (a *App) selectedPaths(t *model.Tab) []string {
	if len(t.MarkedEntries) > 0 {
		paths := make([]string, 0, len(t.MarkedEntries))
		for p := range t.MarkedEntries {
			paths = append(paths, p)
		}
		return paths
	}
	if t.SelectedIndex >= 0 && t.SelectedIndex < len(t.Entries) {
		return []string{t.Entries[t.SelectedIndex].Path}
	}
	return nil
}

// activateSelection opens the cursor's entry: navigates into a
// directory, or opens the "open with" picker for a file.
func (a *App) activateSelection(t *model.Tab) {
	if t.SelectedIndex < 0 || t.SelectedIndex >= len(t.Entries) {
		return
	}
	e := t.Entries[t.SelectedIndex]
	if e.Kind == model.KindDir {
		a.NavigateTab(t, e.Path)
		return
	}
	a.popup = OpenWith(e.Path)
}

// isNonEmptyDir reports whether path is a directory containing at least
// one entry, used to decide whether a delete needs the recursive
// confirmation stage.
func (a *App) isNonEmptyDir(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}

// performDelete runs the actual removal for a confirmed delete popup and
// drops any deleted paths from the mark set.
func (a *App) performDelete(t *model.Tab, paths []string) {
	deleted, err := a.fileOps.Delete(paths)
	if err != nil {
		debug.Log(debug.APP, "delete failed: %v", err)
	}
	for _, p := range deleted {
		delete(t.MarkedEntries, p)
	}
	a.refreshTab(t)
}

// confirmPopup applies ActionConfirm to whichever modal is currently
// open: the action means something different per popup kind (commit a
// rename, create the new entry, advance or run a delete, jump to the
// teleport match). With no popup open it activates the cursor's entry.
func (a *App) confirmPopup(t *model.Tab) {
	switch a.popup.Kind {
	case PopupRename:
		oldPath := a.popup.RenameTarget
		newPath := filepath.Join(filepath.Dir(oldPath), a.popup.RenameInput)
		if err := a.fileOps.Rename(t, oldPath, newPath); err != nil {
			debug.Log(debug.APP, "rename failed: %v", err)
		}
		a.popup = Close()
		a.refreshTab(t)

	case PopupCreate:
		name := a.popup.CreateInput
		var err error
		if a.popup.CreateIsDir {
			err = a.fileOps.CreateFolder(t, t.CurrentPath, name)
		} else {
			err = a.fileOps.CreateFile(t, t.CurrentPath, name)
		}
		if err != nil {
			debug.Log(debug.APP, "create failed: %v", err)
		}
		a.popup = Close()
		a.refreshTab(t)

	case PopupDeleteConfirm:
		if a.popup.DeleteStage == DeleteInitial && NeedsRecursiveConfirm(a.popup.DeleteTargets, a.isNonEmptyDir) {
			a.popup.AdvanceDelete()
			return
		}
		targets := a.popup.DeleteTargets
		a.popup = Close()
		a.performDelete(t, targets)

	case PopupTeleport:
		matches, err := a.Teleport(a.popup.TeleportQuery)
		a.popup = Close()
		if err == nil && len(matches) > 0 {
			a.NavigateTab(t, matches[0].Path)
		}

	case PopupOpenWith, PopupConflict, PopupPluginError:
		a.popup = Close()

	default:
		a.activateSelection(t)
	}
}

// handleUIEvent applies whatever the widget tree reported this frame:
// a selection change (independent of Action, so moving the mouse alone
// still drives the preview pane), a popup's live text input, and at
// most one Action.
func (a *App) handleUIEvent(evt UIEvent) {
	t := a.tabs.Current()
	if t == nil {
		return
	}

	if evt.SelectIndex >= 0 && evt.SelectIndex < len(t.Entries) && evt.SelectIndex != t.SelectedIndex {
		a.selectEntry(t, evt.SelectIndex)
	}

	switch a.popup.Kind {
	case PopupRename:
		a.popup.RenameInput = evt.RenameInput
	case PopupCreate:
		a.popup.CreateInput = evt.RenameInput
	case PopupTeleport:
		a.popup.TeleportQuery = evt.TeleportQuery
	case PopupConflict:
		if evt.ConflictRes != ConflictAbort || evt.Action == config.ActionConfirm {
			a.popup.ResolveConflict(evt.ConflictRes)
			a.popup = Close()
		}
	}

	if a.popup.Kind == PopupDeleteConfirm && evt.DeleteConfirm {
		a.confirmPopup(t)
	}

	if evt.SortColumn != model.SortNone {
		a.tabs.ToggleSort(evt.SortColumn)
	}

	if evt.Action == "" {
		a.window.Invalidate()
		return
	}

	switch evt.Action {
	case config.ActionOpen:
		if evt.NavigatePath != "" {
			expanded := ExpandPath(evt.NavigatePath, t.CurrentPath, a.homePath)
			if exists, isDir := ValidatePath(expanded); exists && isDir {
				a.NavigateTab(t, expanded)
			}
			a.window.Invalidate()
			return
		}
		fallthrough
	default:
		a.dispatchAction(evt.Action)
	}
}
