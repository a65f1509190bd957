package host

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/ini.v1"
)

// FileSettings is a SettingsStore persisted as an INI file, one section per
// domain. Mutations are buffered in memory until Save.
type FileSettings struct {
	mu   sync.RWMutex
	path string
	file *ini.File
}

// OpenFileSettings loads the settings file at path, starting empty when the
// file does not exist yet.
func OpenFileSettings(path string) (*FileSettings, error) {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings file %s: %w", path, err)
	}
	return &FileSettings{path: path, file: file}, nil
}

// Read returns the stored value, or def when the key is absent.
func (s *FileSettings) Read(domain, key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec := s.file.Section(domain)
	if !sec.HasKey(key) {
		return def
	}
	return sec.Key(key).String()
}

// Write stores a value.
func (s *FileSettings) Write(domain, key, value string) {
	s.mu.Lock()
	s.file.Section(domain).Key(key).SetValue(value)
	s.mu.Unlock()
}

// Delete removes the key entirely.
func (s *FileSettings) Delete(domain, key string) {
	s.mu.Lock()
	s.file.Section(domain).DeleteKey(key)
	s.mu.Unlock()
}

// Save writes the settings back to disk.
func (s *FileSettings) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := s.file.SaveTo(s.path); err != nil {
		return fmt.Errorf("failed to save settings to %s: %w", s.path, err)
	}
	return nil
}
