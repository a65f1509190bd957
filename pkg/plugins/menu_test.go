package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easelhq/pluginman/pkg/host"
)

func TestResolveMenu_SingleSegment(t *testing.T) {
	root := host.NewMenu("menubar")
	tools := root.AddMenu("tools")

	got := ResolveMenu(root, "tools")
	require.NotNil(t, got)
	assert.Equal(t, tools.ObjectName(), got.ObjectName())
}

func TestResolveMenu_NestedPath(t *testing.T) {
	root := host.NewMenu("menubar")
	scripts := root.AddMenu("tools").AddMenu("scripts")

	got := ResolveMenu(root, "tools/scripts")
	require.NotNil(t, got)
	assert.Equal(t, scripts.ObjectName(), got.ObjectName())
}

func TestResolveMenu_MissingSegment(t *testing.T) {
	root := host.NewMenu("menubar")
	root.AddMenu("tools")

	assert.Nil(t, ResolveMenu(root, "tools/scripts"))
	assert.Nil(t, ResolveMenu(root, "filters"))
}

func TestResolveMenu_EmptyInputs(t *testing.T) {
	root := host.NewMenu("menubar")

	assert.Nil(t, ResolveMenu(root, ""))
	assert.Nil(t, ResolveMenu(nil, "tools"))
}
