package plugins

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easelhq/pluginman/pkg/host"
)

func TestWatcher_RefreshesOnInstall(t *testing.T) {
	paths := testPaths(t)
	reg := NewRegistry(paths, host.NewMemorySettings(), testLog())
	require.NoError(t, reg.Refresh())
	require.Equal(t, 0, reg.Len())

	w, err := NewWatcher(reg, testLog())
	require.NoError(t, err)
	defer w.Close()

	installFixture(t, paths, "foo")

	assert.Eventually(t, func() bool {
		return reg.Len() == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcher_RefreshesOnRemoval(t *testing.T) {
	paths := testPaths(t)
	installFixture(t, paths, "foo")

	reg := NewRegistry(paths, host.NewMemorySettings(), testLog())
	require.NoError(t, reg.Refresh())
	require.Equal(t, 1, reg.Len())

	w, err := NewWatcher(reg, testLog())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Remove(paths.ManifestPath("foo")))

	assert.Eventually(t, func() bool {
		return reg.Len() == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	paths := testPaths(t)
	reg := NewRegistry(paths, host.NewMemorySettings(), testLog())

	w, err := NewWatcher(reg, testLog())
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatcher_MissingRoot(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.RemoveAll(paths.InstallRoot))

	reg := NewRegistry(paths, host.NewMemorySettings(), testLog())
	_, err := NewWatcher(reg, testLog())
	assert.Error(t, err)
}
