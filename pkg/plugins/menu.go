package plugins

import (
	"strings"

	"github.com/easelhq/pluginman/pkg/host"
)

// ResolveMenu walks a slash-separated menu location from root and returns
// the resolved submenu. Any segment that does not resolve returns nil;
// an unresolved location is an expected outcome, not an error.
func ResolveMenu(root host.MenuNode, location string) host.MenuNode {
	if root == nil || location == "" {
		return nil
	}

	segment, rest, _ := strings.Cut(location, "/")
	child := root.Child(segment)
	if child == nil {
		return nil
	}
	if rest == "" {
		return child
	}
	return ResolveMenu(child, rest)
}
