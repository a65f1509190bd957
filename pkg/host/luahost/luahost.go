package luahost

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/easelhq/pluginman/pkg/host"
)

// Host runs entry modules as Lua scripts, one state per module.
type Host struct {
	mu         sync.Mutex
	log        *logrus.Logger
	settings   host.SettingsStore
	modules    map[string]*module
	order      []string
	extensions []host.Extension
	actions    []host.Action
	window     *window
}

type module struct {
	info  host.ModuleInfo
	state *lua.LState
	exts  []host.Extension
}

type window struct {
	menuBar *host.Menu
}

func (w *window) MenuBar() host.MenuNode { return w.menuBar }

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(h *Host) { h.log = log }
}

// WithSettings sets the settings store backing the host. Defaults to an
// in-memory store.
func WithSettings(s host.SettingsStore) Option {
	return func(h *Host) { h.settings = s }
}

// New creates a Lua-backed host with a single window and an empty menu bar.
func New(opts ...Option) *Host {
	h := &Host{
		log:      logrus.New(),
		settings: host.NewMemorySettings(),
		modules:  make(map[string]*module),
		window:   &window{menuBar: host.NewMenu("menubar")},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Settings returns the host settings store.
func (h *Host) Settings() host.SettingsStore { return h.settings }

// Modules returns the host module loader.
func (h *Host) Modules() host.ModuleLoader { return h }

// ActiveWindow returns the host window.
func (h *Host) ActiveWindow() host.Window { return h.window }

// MenuBar returns the concrete menu bar so the embedding application can
// build its menu tree.
func (h *Host) MenuBar() *host.Menu { return h.window.menuBar }

// Extensions enumerates extensions registered by loaded modules.
func (h *Host) Extensions() []host.Extension {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]host.Extension, len(h.extensions))
	copy(out, h.extensions)
	return out
}

// Actions enumerates the host action table.
func (h *Host) Actions() []host.Action {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]host.Action, len(h.actions))
	copy(out, h.actions)
	return out
}

// Load runs the script at path in a fresh Lua state and records it as a
// named module. Extensions the script registers become visible through
// Extensions.
func (h *Host) Load(name, path string) error {
	h.mu.Lock()
	if _, exists := h.modules[name]; exists {
		h.mu.Unlock()
		return fmt.Errorf("module already loaded: %s", name)
	}
	h.mu.Unlock()

	L := lua.NewState()
	mod := &module{
		info:  host.ModuleInfo{Name: name, Path: path},
		state: L,
	}

	h.registerAPI(L, mod, filepath.Dir(path))

	if err := L.DoFile(path); err != nil {
		L.Close()
		return fmt.Errorf("failed to load module %s: %w", name, err)
	}

	h.mu.Lock()
	h.modules[name] = mod
	h.order = append(h.order, name)
	h.extensions = append(h.extensions, mod.exts...)
	h.mu.Unlock()

	h.log.Debugf("Loaded module %s from %s (%d extensions)", name, path, len(mod.exts))
	return nil
}

// Loaded returns loaded modules in load order.
func (h *Host) Loaded() []host.ModuleInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]host.ModuleInfo, 0, len(h.order))
	for _, name := range h.order {
		if mod, ok := h.modules[name]; ok {
			out = append(out, mod.info)
		}
	}
	return out
}

// Unload closes a module's Lua state and drops its extensions. Unknown
// names are ignored.
func (h *Host) Unload(name string) {
	h.mu.Lock()
	mod, ok := h.modules[name]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.modules, name)
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	kept := h.extensions[:0]
	for _, ext := range h.extensions {
		owned := false
		for _, own := range mod.exts {
			if ext == own {
				owned = true
				break
			}
		}
		if !owned {
			kept = append(kept, ext)
		}
	}
	h.extensions = kept
	h.mu.Unlock()

	mod.state.Close()
	h.log.Debugf("Unloaded module %s", name)
}

// Close unloads every module.
func (h *Host) Close() {
	h.mu.Lock()
	names := make([]string, len(h.order))
	copy(names, h.order)
	h.mu.Unlock()

	for i := len(names) - 1; i >= 0; i-- {
		h.Unload(names[i])
	}
}

// registerAPI installs the pluginman module into a script's state.
func (h *Host) registerAPI(L *lua.LState, mod *module, sourceDir string) {
	tbl := L.NewTable()
	L.SetField(tbl, "register_extension", L.NewFunction(func(L *lua.LState) int {
		spec := L.CheckTable(1)

		ext := &extension{host: h, state: L, sourceDir: sourceDir}
		if fn, ok := L.GetField(spec, "setup").(*lua.LFunction); ok {
			ext.setup = fn
		}
		if fn, ok := L.GetField(spec, "create_actions").(*lua.LFunction); ok {
			ext.createActions = fn
		}

		mod.exts = append(mod.exts, ext)
		return 0
	}))
	L.SetField(tbl, "log", L.NewFunction(func(L *lua.LState) int {
		h.log.Infof("[%s] %s", mod.info.Name, L.CheckString(1))
		return 0
	}))
	L.SetGlobal("pluginman", tbl)
}

// createAction registers an action in the host action table.
func (h *Host) createAction(name, text, menuLocation string) host.Action {
	props := map[string]string{}
	if text != "" {
		props["text"] = text
	}
	if menuLocation != "" {
		props["menulocation"] = menuLocation
	}
	a := host.NewSimpleAction(name, props)

	h.mu.Lock()
	h.actions = append(h.actions, a)
	h.mu.Unlock()
	return a
}

// extension adapts a registered Lua extension table to host.Extension.
type extension struct {
	host          *Host
	state         *lua.LState
	sourceDir     string
	setup         *lua.LFunction
	createActions *lua.LFunction
}

func (e *extension) SourceDir() string { return e.sourceDir }

func (e *extension) HasSetup() bool { return e.setup != nil }

func (e *extension) Setup() error {
	if e.setup == nil {
		return nil
	}
	return e.state.CallByParam(lua.P{Fn: e.setup, NRet: 0, Protect: true})
}

func (e *extension) HasCreateActions() bool { return e.createActions != nil }

// CreateActions invokes the script's create_actions with a window table
// exposing create_action(name, text, menulocation).
func (e *extension) CreateActions(w host.Window) error {
	if e.createActions == nil {
		return nil
	}

	L := e.state
	winTbl := L.NewTable()
	L.SetField(winTbl, "create_action", L.NewFunction(func(L *lua.LState) int {
		idx := 1
		// tolerate win:create_action(...) colon calls
		if L.Get(1).Type() == lua.LTTable {
			idx = 2
		}
		name := L.CheckString(idx)
		text := L.OptString(idx+1, "")
		loc := L.OptString(idx+2, "")
		e.host.createAction(name, text, loc)
		return 0
	}))

	return L.CallByParam(lua.P{Fn: e.createActions, NRet: 0, Protect: true}, winTbl)
}
