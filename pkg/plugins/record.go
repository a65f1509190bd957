package plugins

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/easelhq/pluginman/pkg/config"
	"github.com/easelhq/pluginman/pkg/desktopentry"
	"github.com/easelhq/pluginman/pkg/host"
)

// SettingsDomain is the settings-store domain holding activation
// sentinels.
const SettingsDomain = "python"

// EnableKey returns the settings key carrying a plugin's activation
// sentinel.
func EnableKey(id string) string {
	return "enable_" + id
}

// Record is one discovered plugin. Active is a read-through cache of the
// host's persisted sentinel, populated when the record is built and
// re-synced by the lifecycle engine after every mutation.
type Record struct {
	ID           string
	Name         string
	Description  string
	InstallPath  string
	ManualPath   string
	ManifestPath string
	Valid        bool
	Active       bool
}

// NewRecordFromFile builds a record by parsing a manifest file on disk.
func NewRecordFromFile(path string, paths config.Paths, settings host.SettingsStore) (*Record, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: manifest path is empty", ErrInvalidArgument)
	}
	if !strings.HasSuffix(path, ".desktop") {
		return nil, fmt.Errorf("%w: manifest must have .desktop extension: %s", ErrInvalidArgument, path)
	}

	entry, err := desktopentry.ParseFile(path)
	if err != nil {
		return nil, err
	}

	rec := fromEntry(entry, paths, settings)
	rec.ManifestPath = path
	return rec, nil
}

// NewRecordFromContent builds a record from manifest text that has not
// been written to disk yet, e.g. read out of an archive. The manifest path
// is synthesized at the install root.
func NewRecordFromContent(content string, paths config.Paths, settings host.SettingsStore) (*Record, error) {
	entry, err := desktopentry.Parse(content)
	if err != nil {
		return nil, err
	}

	rec := fromEntry(entry, paths, settings)
	rec.ManifestPath = paths.ManifestPath(rec.ID)
	return rec, nil
}

func fromEntry(entry *desktopentry.Entry, paths config.Paths, settings host.SettingsStore) *Record {
	rec := &Record{
		ID:          entry.Library,
		Name:        entry.Name,
		Description: entry.Comment,
		InstallPath: paths.PluginDir(entry.Library),
		Valid:       true,
	}

	if entry.Manual != "" {
		rec.ManualPath = filepath.Join(rec.InstallPath, entry.Manual)
	}

	if settings != nil {
		rec.Active = settings.Read(SettingsDomain, EnableKey(rec.ID), "false") == "true"
	}

	return rec
}

// reset returns the record to the void state used after uninstallation.
func (r *Record) reset() {
	*r = Record{}
}

// IsVoid reports whether the record has been reset.
func (r *Record) IsVoid() bool {
	return r.ID == ""
}

// String returns a debug representation.
func (r *Record) String() string {
	return fmt.Sprintf("<Plugin(%s, %s, valid=%t, active=%t, %s)>",
		r.ID, r.Name, r.Valid, r.Active, r.InstallPath)
}
