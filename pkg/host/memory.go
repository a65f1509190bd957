package host

import (
	"fmt"
	"sync"
)

// MemorySettings is an in-memory SettingsStore.
type MemorySettings struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySettings creates an empty settings store.
func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: make(map[string]string)}
}

func settingsKey(domain, key string) string {
	return domain + "/" + key
}

// Read returns the stored value, or def when the key is absent.
func (s *MemorySettings) Read(domain, key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[settingsKey(domain, key)]; ok {
		return v
	}
	return def
}

// Write stores a value.
func (s *MemorySettings) Write(domain, key, value string) {
	s.mu.Lock()
	s.values[settingsKey(domain, key)] = value
	s.mu.Unlock()
}

// Delete removes the key entirely.
func (s *MemorySettings) Delete(domain, key string) {
	s.mu.Lock()
	delete(s.values, settingsKey(domain, key))
	s.mu.Unlock()
}

// Has reports whether the key exists at all.
func (s *MemorySettings) Has(domain, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.values[settingsKey(domain, key)]
	return ok
}

// Len returns the number of stored keys.
func (s *MemorySettings) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// ScriptedExtension is a concrete Extension whose hooks are plain Go
// functions. A nil function means the capability is not exposed.
type ScriptedExtension struct {
	Dir             string
	SetupFn         func() error
	CreateActionsFn func(w Window) error
}

// SourceDir returns the extension's defining module directory.
func (e *ScriptedExtension) SourceDir() string { return e.Dir }

// HasSetup reports whether the extension exposes a setup hook.
func (e *ScriptedExtension) HasSetup() bool { return e.SetupFn != nil }

// Setup invokes the setup hook.
func (e *ScriptedExtension) Setup() error {
	if e.SetupFn == nil {
		return nil
	}
	return e.SetupFn()
}

// HasCreateActions reports whether the extension exposes createActions.
func (e *ScriptedExtension) HasCreateActions() bool { return e.CreateActionsFn != nil }

// CreateActions invokes the createActions hook.
func (e *ScriptedExtension) CreateActions(w Window) error {
	if e.CreateActionsFn == nil {
		return nil
	}
	return e.CreateActionsFn(w)
}

// MemoryWindow is a Window over a Menu tree.
type MemoryWindow struct {
	menuBar *Menu
}

// NewMemoryWindow creates a window with an empty menu bar.
func NewMemoryWindow() *MemoryWindow {
	return &MemoryWindow{menuBar: NewMenu("menubar")}
}

// MenuBar returns the window's menu bar.
func (w *MemoryWindow) MenuBar() MenuNode { return w.menuBar }

// Menu returns the concrete menu bar for tree construction.
func (w *MemoryWindow) Menu() *Menu { return w.menuBar }

// MemoryHost is an in-memory Host. Module loading runs optional scripted
// hooks keyed by entry path, which typically register extensions the way a
// real entry module would.
type MemoryHost struct {
	mu         sync.Mutex
	settings   *MemorySettings
	modules    map[string]ModuleInfo
	order      []string
	extensions []Extension
	actions    []Action
	window     *MemoryWindow
	onLoad     map[string]func(h *MemoryHost, info ModuleInfo) error
}

// NewMemoryHost creates a host with empty settings, module table and a
// single window.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		settings: NewMemorySettings(),
		modules:  make(map[string]ModuleInfo),
		window:   NewMemoryWindow(),
		onLoad:   make(map[string]func(h *MemoryHost, info ModuleInfo) error),
	}
}

// Settings returns the host settings store.
func (h *MemoryHost) Settings() SettingsStore { return h.settings }

// SettingsStore returns the concrete store for test inspection.
func (h *MemoryHost) SettingsStore() *MemorySettings { return h.settings }

// Modules returns the host module loader.
func (h *MemoryHost) Modules() ModuleLoader { return h }

// Window returns the concrete window for menu-tree construction.
func (h *MemoryHost) Window() *MemoryWindow { return h.window }

// ActiveWindow returns the host's window.
func (h *MemoryHost) ActiveWindow() Window { return h.window }

// ScriptModule registers a hook invoked when a module is loaded from path.
// Returning an error fails the load, like a module raising at import time.
func (h *MemoryHost) ScriptModule(path string, fn func(h *MemoryHost, info ModuleInfo) error) {
	h.mu.Lock()
	h.onLoad[path] = fn
	h.mu.Unlock()
}

// AddExtension registers a live extension object.
func (h *MemoryHost) AddExtension(e Extension) {
	h.mu.Lock()
	h.extensions = append(h.extensions, e)
	h.mu.Unlock()
}

// Extensions enumerates live extension objects.
func (h *MemoryHost) Extensions() []Extension {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Extension, len(h.extensions))
	copy(out, h.extensions)
	return out
}

// CreateAction registers an action in the host action table.
func (h *MemoryHost) CreateAction(a Action) {
	h.mu.Lock()
	h.actions = append(h.actions, a)
	h.mu.Unlock()
}

// Actions enumerates the host action table.
func (h *MemoryHost) Actions() []Action {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Action, len(h.actions))
	copy(out, h.actions)
	return out
}

// Load records the module and runs its scripted hook, if any.
func (h *MemoryHost) Load(name, path string) error {
	h.mu.Lock()
	if _, exists := h.modules[name]; exists {
		h.mu.Unlock()
		return fmt.Errorf("module already loaded: %s", name)
	}
	info := ModuleInfo{Name: name, Path: path}
	hook := h.onLoad[path]
	h.mu.Unlock()

	if hook != nil {
		if err := hook(h, info); err != nil {
			return fmt.Errorf("module %s failed to load: %w", name, err)
		}
	}

	h.mu.Lock()
	h.modules[name] = info
	h.order = append(h.order, name)
	h.mu.Unlock()
	return nil
}

// Loaded returns loaded modules in load order.
func (h *MemoryHost) Loaded() []ModuleInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]ModuleInfo, 0, len(h.order))
	for _, name := range h.order {
		if info, ok := h.modules[name]; ok {
			out = append(out, info)
		}
	}
	return out
}

// Unload purges a module from the table. Unknown names are ignored.
func (h *MemoryHost) Unload(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.modules[name]; !ok {
		return
	}
	delete(h.modules, name)
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}
