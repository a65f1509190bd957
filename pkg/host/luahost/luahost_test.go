package luahost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "init.lua")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_RegistersExtension(t *testing.T) {
	h := New()
	defer h.Close()

	dir := filepath.Join(t.TempDir(), "myplugin")
	path := writeScript(t, dir, `
pluginman.register_extension{
    setup = function() end,
    create_actions = function(window)
        window.create_action("myplugin_run", "Run", "tools/scripts")
    end,
}
`)

	require.NoError(t, h.Load("myplugin", path))

	exts := h.Extensions()
	require.Len(t, exts, 1)
	assert.Equal(t, dir, exts[0].SourceDir())
	assert.True(t, exts[0].HasSetup())
	assert.True(t, exts[0].HasCreateActions())

	loaded := h.Loaded()
	require.Len(t, loaded, 1)
	assert.Equal(t, "myplugin", loaded[0].Name)
	assert.Equal(t, path, loaded[0].Path)
}

func TestLoad_ScriptError(t *testing.T) {
	h := New()
	defer h.Close()

	path := writeScript(t, filepath.Join(t.TempDir(), "bad"), `error("boom")`)

	err := h.Load("bad", path)
	assert.Error(t, err)
	assert.Empty(t, h.Loaded())
	assert.Empty(t, h.Extensions())
}

func TestLoad_DuplicateName(t *testing.T) {
	h := New()
	defer h.Close()

	path := writeScript(t, filepath.Join(t.TempDir(), "dup"), ``)
	require.NoError(t, h.Load("dup", path))

	assert.Error(t, h.Load("dup", path))
}

func TestCreateActions_PopulatesActionTable(t *testing.T) {
	h := New()
	defer h.Close()

	dir := filepath.Join(t.TempDir(), "acts")
	path := writeScript(t, dir, `
pluginman.register_extension{
    create_actions = function(window)
        window.create_action("acts_one", "One", "tools/scripts")
        window.create_action("acts_two", "Two")
    end,
}
`)
	require.NoError(t, h.Load("acts", path))

	exts := h.Extensions()
	require.Len(t, exts, 1)
	require.NoError(t, exts[0].CreateActions(h.ActiveWindow()))

	actions := h.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, "acts_one", actions[0].ObjectName())

	loc, ok := actions[0].Property("menulocation")
	assert.True(t, ok)
	assert.Equal(t, "tools/scripts", loc)

	_, ok = actions[1].Property("menulocation")
	assert.False(t, ok)
}

func TestCreateActions_ColonCall(t *testing.T) {
	h := New()
	defer h.Close()

	path := writeScript(t, filepath.Join(t.TempDir(), "colon"), `
pluginman.register_extension{
    create_actions = function(window)
        window:create_action("colon_action", "Colon", "tools")
    end,
}
`)
	require.NoError(t, h.Load("colon", path))

	require.NoError(t, h.Extensions()[0].CreateActions(h.ActiveWindow()))
	require.Len(t, h.Actions(), 1)
	assert.Equal(t, "colon_action", h.Actions()[0].ObjectName())
}

func TestSetup_RunsScriptFunction(t *testing.T) {
	h := New()
	defer h.Close()

	dir := filepath.Join(t.TempDir(), "setup")
	path := writeScript(t, dir, `
ran = false
pluginman.register_extension{
    setup = function() ran = true end,
}
`)
	require.NoError(t, h.Load("setup", path))

	require.NoError(t, h.Extensions()[0].Setup())
}

func TestUnload_DropsExtensions(t *testing.T) {
	h := New()
	defer h.Close()

	a := writeScript(t, filepath.Join(t.TempDir(), "a"), `pluginman.register_extension{}`)
	b := writeScript(t, filepath.Join(t.TempDir(), "b"), `pluginman.register_extension{}`)

	require.NoError(t, h.Load("a", a))
	require.NoError(t, h.Load("b", b))
	require.Len(t, h.Extensions(), 2)

	h.Unload("a")

	assert.Len(t, h.Extensions(), 1)
	assert.Len(t, h.Loaded(), 1)
	assert.Equal(t, "b", h.Loaded()[0].Name)

	h.Unload("missing") // no-op
}

func TestSettings_DefaultInMemory(t *testing.T) {
	h := New()
	defer h.Close()

	h.Settings().Write("python", "enable_x", "true")
	assert.Equal(t, "true", h.Settings().Read("python", "enable_x", "false"))
}
