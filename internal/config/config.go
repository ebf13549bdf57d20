package config

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all user-configurable settings loaded from config.toml.
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Preview   PreviewConfig   `toml:"preview"`
	Plugins   PluginsConfig   `toml:"plugins"`
	Shortcuts map[string]interface{} `toml:"shortcuts"` // raw values; see shortcuts.go for parsing
}

// GeneralConfig holds browsing behavior settings.
type GeneralConfig struct {
	ShowDotfiles   bool   `toml:"show_dotfiles"`
	ConfirmDelete  bool   `toml:"confirm_delete"`
	RestoreLastPath bool  `toml:"restore_last_path"`
	DefaultSort    string `toml:"default_sort"`  // "name" | "size" | "date" | "type"
	SortAscending  bool   `toml:"sort_ascending"`
	GroupDirsFirst bool   `toml:"group_dirs_first"`
}

// PreviewConfig holds preview pane settings.
type PreviewConfig struct {
	Enabled        bool     `toml:"enabled"`
	WidthPercent   int      `toml:"width_percent"`
	TextExtensions []string `toml:"text_extensions"`
	MaxFileSize    int64    `toml:"max_file_size"`
	PopupWidth     int      `toml:"popup_width"`
}

// PluginsConfig holds plugin host settings.
type PluginsConfig struct {
	Dir     string `toml:"dir"` // empty selects <config-dir>/plugins
	Enabled bool   `toml:"enabled"`
}

// ParseError describes a malformed config.toml; fatal at startup.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Manager handles loading, saving, and accessing configuration.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error
}

// NewManager creates a configuration manager seeded with defaults.
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

// DefaultConfig returns the baseline configuration merged under any
// partial user config at load time.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			ShowDotfiles:    false,
			ConfirmDelete:   true,
			RestoreLastPath: true,
			DefaultSort:     "name",
			SortAscending:   true,
			GroupDirsFirst:  true,
		},
		Preview: PreviewConfig{
			Enabled:        true,
			WidthPercent:   33,
			TextExtensions: []string{".txt", ".json", ".csv", ".md", ".log", ".xml", ".yaml", ".yml", ".toml", ".ini", ".conf", ".cfg"},
			MaxFileSize:    1024 * 1024,
			PopupWidth:     900,
		},
		Plugins: PluginsConfig{
			Enabled: true,
		},
		Shortcuts: DefaultShortcutBindings(),
	}
}

// ConfigDir returns ~/.config/kiorg, consistent across platforms.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "kiorg")
}

// ConfigPath returns ~/.config/kiorg/config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads config.toml, creating it with defaults if missing. A
// malformed file is reported via ParseError and the defaults are used
// so the caller can still decide whether to proceed or halt — shortcut
// conflicts in particular must halt startup before the UI exists.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.path = ConfigPath()
	m.parseErr = nil

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		log.Printf("config: creating default config at %s", m.path)
		m.config = DefaultConfig()
		return m.saveUnlocked()
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", m.path, err)
	}

	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		m.parseErr = &ParseError{Path: m.path, Err: err}
		m.config = DefaultConfig()
		return m.parseErr
	}

	m.config = cfg
	return nil
}

func (m *Manager) saveUnlocked() error {
	data, err := renderOverrides(m.config)
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Save writes the current configuration to disk.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveUnlocked()
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the load-time parse error, if any.
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// Update applies fn to the in-memory configuration under lock. Callers
// that want the change to survive a restart must call Save afterward.
func (m *Manager) Update(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.config)
}

// renderOverrides encodes only the fields of cfg that differ from
// DefaultConfig, so a freshly written config.toml never pins down values
// the user never actually chose: defaults live in code and stay free to
// change between releases.
func renderOverrides(cfg *Config) ([]byte, error) {
	overrides, err := diffFromDefault(cfg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(overrides); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// diffFromDefault round-trips cfg and DefaultConfig through TOML into
// generic maps and keeps only the keys that differ, recursing into
// tables. Comparing the decoded generic form (rather than Go struct zero
// values) means an override that happens to equal a type's zero value
// (e.g. confirm_delete = false) is still recognized as an override.
func diffFromDefault(cfg *Config) (map[string]interface{}, error) {
	overrideDoc, err := encodeToMap(cfg)
	if err != nil {
		return nil, err
	}
	defaultDoc, err := encodeToMap(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return diffMap(overrideDoc, defaultDoc), nil
}

func encodeToMap(cfg *Config) (map[string]interface{}, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	doc := make(map[string]interface{})
	if _, err := toml.Decode(buf.String(), &doc); err != nil {
		return nil, fmt.Errorf("config: decode for diff: %w", err)
	}
	return doc, nil
}

func diffMap(override, def map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range override {
		dv, known := def[k]
		if !known {
			out[k] = v
			continue
		}
		if vm, ok := v.(map[string]interface{}); ok {
			if dm, ok := dv.(map[string]interface{}); ok {
				if sub := diffMap(vm, dm); len(sub) > 0 {
					out[k] = sub
				}
				continue
			}
		}
		if !reflect.DeepEqual(v, dv) {
			out[k] = v
		}
	}
	return out
}

// GenerateConfig backs up any existing config.toml with a timestamp
// suffix and writes a fresh default one, returning the backup path (or
// empty if there was nothing to back up).
func GenerateConfig() (backupPath string, err error) {
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = filepath.Join(filepath.Dir(path), "config.backup."+timestamp+".toml")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("config: read existing: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("config: write backup: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return backupPath, fmt.Errorf("config: create directory: %w", err)
	}

	data, err := renderOverrides(DefaultConfig())
	if err != nil {
		return backupPath, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return backupPath, fmt.Errorf("config: write: %w", err)
	}
	return backupPath, nil
}
