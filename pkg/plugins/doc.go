// Package plugins implements the plugin lifecycle engine: discovery of
// installed plugins, installation from zip archives, and the
// activate/deactivate/uninstall state machine.
//
// # Components
//
// Record: one discovered plugin, its parsed manifest fields, validity and
// activation flag. The activation flag is a read-through cache of the
// host's persisted setting, populated when the record is built.
//
// Registry: the id-keyed set of records present in the install root.
// Refresh is a destructive rebuild; a corrupt manifest skips that file
// only.
//
// Installer: validates a distributable archive (exactly one manifest, an
// entry module for the declared id) and extracts it, partitioning entries
// between the install root, the actions directory and the plugin's own
// directory. Extraction goes through a staging directory and renames into
// place, so a failed install never leaves a partial plugin directory.
//
// Lifecycle: drives the host. It persists the activation sentinel, loads
// and unloads entry modules, correlates freshly registered extension
// objects with the plugin by install path, and patches newly created
// actions into the window's menu tree.
//
// Every operation is synchronous and runs to completion on the calling
// goroutine. The install root is shared filesystem state; concurrent
// external modification during a refresh is an unsupported race.
package plugins
