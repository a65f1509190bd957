package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/easelhq/pluginman/pkg/config"
	"github.com/easelhq/pluginman/pkg/host"
)

// Registry holds the set of plugins discovered in the install root.
type Registry struct {
	mu       sync.RWMutex
	paths    config.Paths
	settings host.SettingsStore
	records  map[string]*Record
	metrics  *Metrics
	log      *logrus.Logger
}

// NewRegistry creates an empty registry. Call Refresh to populate it.
func NewRegistry(paths config.Paths, settings host.SettingsStore, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
	}
	return &Registry{
		paths:    paths,
		settings: settings,
		records:  make(map[string]*Record),
		log:      log,
	}
}

// SetMetrics attaches a registry-size gauge updated on each refresh.
func (r *Registry) SetMetrics(m *Metrics) {
	r.metrics = m
}

// Refresh rebuilds the registry from the manifests present in the install
// root. The rebuild is destructive: records for manifests that vanished
// are dropped. A manifest that fails to parse is skipped and logged; it
// never blocks the rest of the listing. Refresh is idempotent.
func (r *Registry) Refresh() error {
	records := make(map[string]*Record)

	entries, err := os.ReadDir(r.paths.InstallRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read install root: %w", err)
		}
		// missing install root means no plugins
		entries = nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
			continue
		}

		path := filepath.Join(r.paths.InstallRoot, entry.Name())
		rec, err := NewRecordFromFile(path, r.paths, r.settings)
		if err != nil {
			r.log.Warnf("Skipping manifest %s: %v", path, err)
			continue
		}

		// id collision: last loaded wins
		records[rec.ID] = rec
	}

	r.mu.Lock()
	r.records = records
	r.mu.Unlock()

	r.metrics.SetListed(len(records))
	return nil
}

// Append adds a record. Returns false without mutating when the record is
// nil or has an empty id.
func (r *Registry) Append(rec *Record) bool {
	if rec == nil || rec.ID == "" {
		return false
	}

	r.mu.Lock()
	r.records[rec.ID] = rec
	r.mu.Unlock()
	return true
}

// AppendFile parses a manifest file and adds the resulting record.
// Returns false on parse failure.
func (r *Registry) AppendFile(path string) bool {
	rec, err := NewRecordFromFile(path, r.paths, r.settings)
	if err != nil {
		r.log.Debugf("Cannot append manifest %s: %v", path, err)
		return false
	}
	return r.Append(rec)
}

// Get returns the record for an id.
func (r *Registry) Get(id string) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is empty", ErrInvalidArgument)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

// Remove drops the record for an id. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidArgument)
	}

	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()
	return nil
}

// All returns every record sorted by id.
func (r *Registry) All() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
