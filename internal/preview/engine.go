package preview

import (
	"context"
	"sync"
	"time"

	"github.com/kiorg/kiorg/internal/debug"
)

// Result is what a worker sends back: either a decoded Content or an
// error string (errors are serialized to string so a worker
// panic/goroutine boundary never carries a typed error across).
type Result struct {
	Path    string
	Content Content
	Err     string
}

// cacheKey identifies a cached preview by path and the file's mtime at
// the time it was decoded, so a later modification invalidates it.
type cacheKey struct {
	path  string
	mtime time.Time
}

// PluginResolver looks up a plugin capable of previewing path, returning
// ok=false if none matches. Kept as an interface so the preview package
// never imports the plugin package directly (plugin host lifecycle is a
// sibling concern, not a dependency of scheduling).
type PluginResolver interface {
	ResolvePlugin(path string) (PluginPreviewer, bool)
}

// PluginPreviewer is the narrow slice of the Plugin Host the preview
// engine needs: "ask this plugin to preview a file".
type PluginPreviewer interface {
	Preview(ctx context.Context, path string, popup bool) ([]Component, error)
}

// Engine is the preview request scheduler: at most one in-flight worker
// per selection, a (path,mtime) cache, and cancel-on-reselect.
type Engine struct {
	mu      sync.Mutex
	cache   map[cacheKey]Content
	cancel  context.CancelFunc
	plugins PluginResolver
}

// NewEngine creates an engine. plugins may be nil if no plugin host is
// wired (e.g. in tests). The per-request target width for pre-scaling
// images travels on Request itself, set by the caller.
func NewEngine(plugins PluginResolver) *Engine {
	return &Engine{
		cache:   make(map[cacheKey]Content),
		plugins: plugins,
	}
}

// Request describes one preview ask: a selected path, whether this is
// the larger/higher-DPI popup preview path, and a target pixel width used
// to pre-scale images.
type Request struct {
	Path        string
	TargetWidth int
	Popup       bool
}

// RequestPreview cancels any in-flight task for the previous selection,
// checks the cache, and otherwise spawns exactly one worker goroutine.
// It always returns immediately: either a cache hit Content, or a nil
// Content plus a channel that receives at most one Result (a worker
// cancelled by a later request sends nothing).
func (e *Engine) RequestPreview(req Request) (cached *Content, rx <-chan Result) {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}

	info, statErr := statMtime(req.Path)
	if statErr == nil {
		if c, ok := e.cache[cacheKey{path: req.Path, mtime: info}]; ok {
			e.mu.Unlock()
			debug.Log(debug.PREVIEW, "cache hit: %s", req.Path)
			return &c, nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	ch := make(chan Result, 1)
	go e.runWorker(ctx, req, ch)
	return nil, ch
}

// Drain should be called by the UI thread with the result from rx and
// the path that is still currently selected. It returns (content, true)
// if the result should be applied, or (zero, false) if it is stale and
// must be discarded: a result is discarded exactly when the selection
// has changed by the time it arrives.
func (e *Engine) Drain(res Result, currentSelectedPath string) (Content, bool) {
	if res.Path != currentSelectedPath {
		debug.Log(debug.PREVIEW, "discarding stale result for %s (current=%s)", res.Path, currentSelectedPath)
		return Content{}, false
	}
	if res.Err != "" {
		return Content{Kind: KindError, ErrorMessage: res.Err}, true
	}

	if info, err := statMtime(res.Path); err == nil {
		e.mu.Lock()
		e.cache[cacheKey{path: res.Path, mtime: info}] = res.Content
		e.mu.Unlock()
	}
	return res.Content, true
}

// CancelInFlight drops the current cancellation function without
// starting a new request, used on UI shutdown to abandon any unfinished
// worker.
func (e *Engine) CancelInFlight() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) runWorker(ctx context.Context, req Request, ch chan<- Result) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log(debug.PREVIEW, "worker panic for %s: %v", req.Path, r)
			select {
			case ch <- Result{Path: req.Path, Err: "internal error decoding preview"}:
			default:
			}
		}
	}()

	content, err := Dispatch(ctx, req, e.plugins)

	// Observe cancellation at this I/O boundary: if the context was
	// cancelled (a newer selection superseded us), exit without sending.
	select {
	case <-ctx.Done():
		debug.Log(debug.PREVIEW, "worker for %s cancelled, dropping result", req.Path)
		return
	default:
	}

	res := Result{Path: req.Path, Content: content}
	if err != nil {
		res.Err = err.Error()
	}
	select {
	case ch <- res:
	case <-ctx.Done():
	}
}
