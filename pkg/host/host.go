package host

// SettingsStore is the host's persisted key/value settings.
// Keys are scoped by a domain; Delete removes the key entirely.
type SettingsStore interface {
	Read(domain, key, def string) string
	Write(domain, key, value string)
	Delete(domain, key string)
}

// ModuleInfo identifies a module loaded into the host process.
type ModuleInfo struct {
	Name string
	Path string
}

// ModuleLoader loads entry modules into the host process and purges them
// from its module table.
type ModuleLoader interface {
	Load(name, path string) error
	Loaded() []ModuleInfo
	Unload(name string)
}

// Action is a UI action registered with the host.
type Action interface {
	ObjectName() string

	// Property returns a named property and whether it is set.
	// The lifecycle engine reads "menulocation" to place new actions.
	Property(name string) (string, bool)
}

// MenuNode is one node of a window's menu tree.
type MenuNode interface {
	ObjectName() string

	// Child returns the submenu with the given object name, or nil.
	Child(objectName string) MenuNode

	AddAction(a Action)
}

// Window is a host window exposing its menu bar.
type Window interface {
	MenuBar() MenuNode
}

// Extension is a live object the host instantiated from a plugin's entry
// module. Setup and CreateActions are optional capabilities; callers must
// consult the Has variants before invoking them.
type Extension interface {
	// SourceDir is the directory of the extension's defining module.
	SourceDir() string

	HasSetup() bool
	Setup() error

	HasCreateActions() bool
	CreateActions(w Window) error
}

// Host aggregates every capability the lifecycle engine needs.
type Host interface {
	Settings() SettingsStore
	Modules() ModuleLoader

	// Extensions enumerates all live extension objects. The same plugin
	// may contribute more than one.
	Extensions() []Extension

	// Actions enumerates the host's current action table.
	Actions() []Action

	// ActiveWindow returns the current window, or nil when the host has
	// no window (headless operation).
	ActiveWindow() Window
}
