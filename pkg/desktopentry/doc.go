// Package desktopentry parses plugin manifests in the freedesktop
// "desktop entry" INI dialect.
//
// A manifest declares the plugin's library id, display name, description
// and an optional relative path to a manual file:
//
//	[Desktop Entry]
//	X-KDE-Library=myplugin
//	Name=My Plugin
//	Comment=Does something useful
//	X-Krita-Manual=manual.html
//
// Name and Comment may be repeated; repeated values join with a space and
// a newline respectively.
package desktopentry
