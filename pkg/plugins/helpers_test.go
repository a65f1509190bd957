package plugins

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/easelhq/pluginman/pkg/config"
)

// testLog keeps test output quiet.
func testLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testPaths(t *testing.T) config.Paths {
	t.Helper()
	tmp := t.TempDir()
	p := config.Paths{
		AppDataDir:  tmp,
		InstallRoot: filepath.Join(tmp, "pykrita"),
		ActionsDir:  filepath.Join(tmp, "actions"),
		EntryFile:   "init.lua",
	}
	require.NoError(t, p.EnsureDirs())
	return p
}

func manifestText(id, name, comment string) string {
	return fmt.Sprintf("[Desktop Entry]\nX-KDE-Library=%s\nName=%s\nComment=%s\n", id, name, comment)
}

// writeManifest writes a manifest for id at the install root.
func writeManifest(t *testing.T, paths config.Paths, id, name, comment string) string {
	t.Helper()
	path := paths.ManifestPath(id)
	require.NoError(t, os.WriteFile(path, []byte(manifestText(id, name, comment)), 0644))
	return path
}

// installFixture lays out an installed plugin: manifest at the root plus a
// plugin directory with an entry module.
func installFixture(t *testing.T, paths config.Paths, id string) {
	t.Helper()
	writeManifest(t, paths, id, id, "test plugin")
	dir := paths.PluginDir(id)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, paths.EntryFile), []byte(""), 0644))
}

// buildArchive writes a zip with the given name→content entries.
func buildArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin.zip")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// recordingConfirmer answers with fixed decisions and counts questions.
type recordingConfirmer struct {
	overwrite      Decision
	uninstall      Decision
	overwriteAsked int
	uninstallAsked int
}

func (c *recordingConfirmer) ConfirmOverwrite(rec *Record) Decision {
	c.overwriteAsked++
	return c.overwrite
}

func (c *recordingConfirmer) ConfirmUninstall(rec *Record) Decision {
	c.uninstallAsked++
	return c.uninstall
}
