package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kiorg/kiorg/internal/debug"
	"github.com/kiorg/kiorg/internal/preview"
)

// pluginPrefix identifies a plugin executable by filename.
const pluginPrefix = "kiorg_plugin_"

// Manager discovers, loads, and owns every plugin child process for the
// lifetime of the application.
type Manager struct {
	mu     sync.RWMutex
	loaded []*LoadedPlugin // load order, also the match-priority order
	failed map[string]FailedPlugin
}

// NewManager scans dir for plugin executables and loads each one
// concurrently. Individual load failures are recorded, never fatal.
func NewManager(ctx context.Context, dir string) (*Manager, error) {
	m := &Manager{failed: make(map[string]FailedPlugin)}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plugin: scan %s: %w", dir, err)
	}

	type outcome struct {
		plugin *LoadedPlugin
		failed *FailedPlugin
		path   string
	}
	var wg sync.WaitGroup
	results := make(chan outcome, len(entries))

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), pluginPrefix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := e.Info()
		if err != nil || info.Mode()&0111 == 0 {
			results <- outcome{path: path, failed: &FailedPlugin{Path: path, Error: "not executable"}}
			continue
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			lp, fp := spawnAndHandshake(ctx, path)
			results <- outcome{plugin: lp, failed: fp, path: path}
		}(path)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Preserve directory order for match priority despite concurrent
	// loads by re-sorting on the original entries slice.
	byPath := make(map[string]outcome)
	for r := range results {
		byPath[r.path] = r
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), pluginPrefix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		r, ok := byPath[path]
		if !ok {
			continue
		}
		if r.plugin != nil {
			m.loaded = append(m.loaded, r.plugin)
			debug.Log(debug.PLUGIN, "loaded plugin %s from %s", r.plugin.Name, path)
		} else if r.failed != nil {
			m.failed[path] = *r.failed
			debug.Log(debug.PLUGIN, "failed to load plugin %s: %s", path, r.failed.Error)
		}
	}

	return m, nil
}

// Loaded returns the plugins currently in a usable state, in load order.
func (m *Manager) Loaded() []*LoadedPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*LoadedPlugin, len(m.loaded))
	copy(out, m.loaded)
	return out
}

// Failed returns every plugin that failed to load or handshake, keyed by
// executable path.
func (m *Manager) Failed() map[string]FailedPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]FailedPlugin, len(m.failed))
	for k, v := range m.failed {
		out[k] = v
	}
	return out
}

// GetPreviewPluginForFile returns the first loaded plugin (in load order)
// whose file_pattern matches name.
func (m *Manager) GetPreviewPluginForFile(name string) (*LoadedPlugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.loaded {
		if p.Pattern != nil && p.Pattern.MatchString(name) {
			return p, true
		}
	}
	return nil, false
}

// ResolvePlugin implements preview.PluginResolver, adapting a matched
// LoadedPlugin into the preview package's narrower interface.
func (m *Manager) ResolvePlugin(path string) (preview.PluginPreviewer, bool) {
	p, ok := m.GetPreviewPluginForFile(filepath.Base(path))
	if !ok {
		return nil, false
	}
	return pluginAdapter{p}, true
}

// pluginAdapter converts a LoadedPlugin's wire-shaped components into
// preview.Component values, keeping the plugin package's wire types out
// of the preview package.
type pluginAdapter struct{ p *LoadedPlugin }

func (a pluginAdapter) Preview(ctx context.Context, path string, popup bool) ([]preview.Component, error) {
	wire, err := a.p.Preview(ctx, path, popup)
	if err != nil {
		return nil, err
	}
	out := make([]preview.Component, 0, len(wire))
	for _, c := range wire {
		out = append(out, convertComponent(c))
	}
	return out, nil
}

func convertComponent(c WireComponent) preview.Component {
	switch c.Kind {
	case "title":
		return preview.Component{Kind: preview.ComponentTitle, Text: c.Text}
	case "image":
		return preview.Component{
			Kind:             preview.ComponentImage,
			ImagePath:        c.Image,
			ImageBytes:       c.Bytes,
			ImageFormat:      c.Format,
			ImageUID:         c.UID,
			ImageInteractive: true,
		}
	case "table":
		return preview.Component{Kind: preview.ComponentTable, Headers: c.Headers, Rows: c.Rows}
	default:
		return preview.Component{Kind: preview.ComponentText, Text: c.Text}
	}
}

// Shutdown closes every loaded plugin's child process.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.loaded {
		p.Close()
	}
	m.loaded = nil
}
