package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Paths describes where plugins and their supporting files live on disk.
type Paths struct {
	// AppDataDir is the host application's data directory
	AppDataDir string `yaml:"appdata_dir"`

	// InstallRoot is the directory plugins are installed under.
	// Every plugin gets its own subdirectory named by its id.
	InstallRoot string `yaml:"install_root"`

	// ActionsDir is the host-managed directory for action definition files
	ActionsDir string `yaml:"actions_dir"`

	// EntryFile is the entry module filename expected inside each plugin
	// directory (relative, e.g. "init.lua")
	EntryFile string `yaml:"entry_file"`
}

// DefaultPaths returns the standard layout rooted at the user's config
// directory.
func DefaultPaths() Paths {
	appData := ""
	if dir, err := os.UserConfigDir(); err == nil {
		appData = filepath.Join(dir, "krita")
	}

	return Paths{
		AppDataDir:  appData,
		InstallRoot: filepath.Join(appData, "pykrita"),
		ActionsDir:  filepath.Join(appData, "actions"),
		EntryFile:   "init.lua",
	}
}

// Load builds Paths from defaults, an optional YAML file and environment
// variables, in that order of increasing precedence.
func Load() (Paths, error) {
	p := DefaultPaths()

	if file := os.Getenv("PLUGINMAN_CONFIG"); file != "" {
		if err := p.loadFile(file); err != nil {
			return Paths{}, err
		}
	}

	if v := os.Getenv("PLUGINMAN_APPDATA"); v != "" {
		p.AppDataDir = v
		p.InstallRoot = filepath.Join(v, "pykrita")
		p.ActionsDir = filepath.Join(v, "actions")
	}
	if v := os.Getenv("PLUGINMAN_INSTALL_ROOT"); v != "" {
		p.InstallRoot = v
	}
	if v := os.Getenv("PLUGINMAN_ACTIONS_DIR"); v != "" {
		p.ActionsDir = v
	}
	if v := os.Getenv("PLUGINMAN_ENTRY_FILE"); v != "" {
		p.EntryFile = v
	}

	if err := p.Validate(); err != nil {
		return Paths{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return p, nil
}

// loadFile overrides fields from a YAML file.
func (p *Paths) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Validate checks that the layout is usable.
func (p Paths) Validate() error {
	if p.InstallRoot == "" {
		return fmt.Errorf("install root is required")
	}
	if p.ActionsDir == "" {
		return fmt.Errorf("actions directory is required")
	}
	if p.EntryFile == "" {
		return fmt.Errorf("entry file name is required")
	}
	if filepath.IsAbs(p.EntryFile) || filepath.Dir(p.EntryFile) != "." {
		return fmt.Errorf("entry file must be a bare filename: %s", p.EntryFile)
	}
	return nil
}

// EnsureDirs creates the install root and actions directory if missing.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.InstallRoot, p.ActionsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// PluginDir returns the install directory for a plugin id.
func (p Paths) PluginDir(id string) string {
	return filepath.Join(p.InstallRoot, id)
}

// ManifestPath returns the path of a plugin's desktop entry at the install
// root.
func (p Paths) ManifestPath(id string) string {
	return filepath.Join(p.InstallRoot, id+".desktop")
}

// ActionFilePath returns the path of a plugin's action definition file.
func (p Paths) ActionFilePath(id string) string {
	return filepath.Join(p.ActionsDir, id+".action")
}

// EntryPath returns the path of a plugin's entry module.
func (p Paths) EntryPath(id string) string {
	return filepath.Join(p.InstallRoot, id, p.EntryFile)
}
