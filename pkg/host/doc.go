// Package host defines the capability interfaces the plugin lifecycle
// engine consumes from the host application: its settings store, module
// loader, extension registry, action table and window/menu system.
//
// The engine never reaches for the host as an ambient singleton; every
// capability is injected at construction. The package also ships in-memory
// implementations (MemoryHost, MemorySettings, Menu) used as deterministic
// substitutes in tests and by embedding applications that do not have a
// native module runtime.
package host
