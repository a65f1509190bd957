package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/easelhq/pluginman/pkg/config"
	"github.com/easelhq/pluginman/pkg/host"
)

// Lifecycle drives plugin state transitions against the host: activation,
// deactivation and uninstallation.
type Lifecycle struct {
	paths     config.Paths
	host      host.Host
	confirmer Confirmer
	metrics   *Metrics
	log       *logrus.Logger
}

// NewLifecycle creates a lifecycle controller.
func NewLifecycle(paths config.Paths, h host.Host, log *logrus.Logger) *Lifecycle {
	if log == nil {
		log = logrus.New()
	}
	return &Lifecycle{
		paths: paths,
		host:  h,
		log:   log,
	}
}

// SetConfirmer sets the confirmer consulted when an operation receives
// DecisionAsk. Without one, DecisionAsk resolves to no.
func (l *Lifecycle) SetConfirmer(c Confirmer) {
	l.confirmer = c
}

// SetMetrics attaches operation counters.
func (l *Lifecycle) SetMetrics(m *Metrics) {
	l.metrics = m
}

// Activate enables a plugin: persists the enabled sentinel, loads the
// entry module, and runs the setup/createActions hooks of every extension
// object the module registered, patching new actions into the menu tree.
//
// Activating an already-active record is a no-op. Finding no matching
// extension object is not an error; the persisted sentinel is what
// activation guarantees.
func (l *Lifecycle) Activate(rec *Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("%w: nil or void record", ErrInvalidArgument)
	}
	if rec.Active {
		return nil
	}

	l.host.Settings().Write(SettingsDomain, EnableKey(rec.ID), "true")
	rec.Active = true

	if err := l.host.Modules().Load(rec.ID, l.paths.EntryPath(rec.ID)); err != nil {
		l.metrics.observe(opActivate, resultError)
		return fmt.Errorf("failed to load entry module for %s: %w", rec.ID, err)
	}

	// snapshot the action table before running any hook
	known := make(map[string]bool)
	for _, a := range l.host.Actions() {
		known[a.ObjectName()] = true
	}

	win := l.host.ActiveWindow()
	var created []host.Action

	for _, ext := range l.host.Extensions() {
		if !samePath(ext.SourceDir(), rec.InstallPath) {
			continue
		}

		if ext.HasSetup() {
			if err := ext.Setup(); err != nil {
				l.log.Warnf("Extension setup failed for %s: %v", rec.ID, err)
			}
		}

		if ext.HasCreateActions() {
			if err := ext.CreateActions(win); err != nil {
				l.log.Warnf("Extension createActions failed for %s: %v", rec.ID, err)
			}
			for _, a := range l.host.Actions() {
				if !known[a.ObjectName()] {
					known[a.ObjectName()] = true
					created = append(created, a)
				}
			}
		}
	}

	if win != nil {
		for _, a := range created {
			loc, ok := a.Property("menulocation")
			if !ok || loc == "" {
				continue
			}
			menu := ResolveMenu(win.MenuBar(), loc)
			if menu == nil {
				l.log.Debugf("Menu location %q not found for action %s", loc, a.ObjectName())
				continue
			}
			menu.AddAction(a)
		}
	}

	l.metrics.observe(opActivate, resultOK)
	l.log.Infof("Activated plugin %s", rec.ID)
	return nil
}

// Deactivate disables a plugin: persists the disabled sentinel and unloads
// every module whose file lives under the plugin's install directory.
// The unload is coarse: actions already inserted into menus stay there.
// Deactivating an already-inactive record is a no-op.
func (l *Lifecycle) Deactivate(rec *Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("%w: nil or void record", ErrInvalidArgument)
	}
	if !rec.Active {
		return nil
	}

	rec.Active = false
	l.host.Settings().Write(SettingsDomain, EnableKey(rec.ID), "false")

	for _, mod := range l.host.Modules().Loaded() {
		if pathUnder(filepath.Dir(mod.Path), rec.InstallPath) {
			l.host.Modules().Unload(mod.Name)
		}
	}

	l.metrics.observe(opDeactivate, resultOK)
	l.log.Infof("Deactivated plugin %s", rec.ID)
	return nil
}

// Uninstall removes a plugin entirely: deactivates it, clears the
// persisted setting, deletes the manifest, the action definition file and
// the install directory, then resets the record to the void state.
//
// confirm follows the three-valued protocol; DecisionAsk consults the
// configured Confirmer. Returns false with a nil error when the operation
// was cancelled. Filesystem errors during removal are logged and tolerated.
func (l *Lifecycle) Uninstall(rec *Record, confirm Decision) (bool, error) {
	if rec == nil || rec.ID == "" {
		return false, fmt.Errorf("%w: nil or void record", ErrInvalidArgument)
	}

	if confirm == DecisionAsk {
		if l.confirmer == nil {
			confirm = DecisionNo
		} else {
			confirm = l.confirmer.ConfirmUninstall(rec)
		}
	}
	if confirm != DecisionYes {
		l.log.Debugf("Uninstall of %s not confirmed, cancelling", rec.ID)
		return false, nil
	}

	if err := l.Deactivate(rec); err != nil {
		return false, err
	}

	l.host.Settings().Delete(SettingsDomain, EnableKey(rec.ID))

	l.removeFile(rec.ManifestPath)
	l.removeFile(l.paths.ActionFilePath(rec.ID))

	if err := os.RemoveAll(rec.InstallPath); err != nil {
		l.log.Warnf("Failed to remove install directory %s: %v", rec.InstallPath, err)
	}

	id := rec.ID
	rec.reset()

	l.metrics.observe(opUninstall, resultOK)
	l.log.Infof("Uninstalled plugin %s", id)
	return true, nil
}

// removeFile deletes a file, tolerating absence.
func (l *Lifecycle) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		l.log.Warnf("Failed to remove %s: %v", path, err)
	}
}

// samePath reports whether two paths refer to the same directory.
func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// pathUnder reports whether dir is root or a descendant of root.
func pathUnder(dir, root string) bool {
	dir = filepath.Clean(dir)
	root = filepath.Clean(root)
	return dir == root || strings.HasPrefix(dir, root+string(filepath.Separator))
}
