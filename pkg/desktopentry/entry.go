package desktopentry

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// SectionName is the required section of a plugin manifest.
const SectionName = "Desktop Entry"

// Manifest keys.
const (
	KeyLibrary = "X-KDE-Library"
	KeyName    = "Name"
	KeyComment = "Comment"
	KeyManual  = "X-Krita-Manual"
)

// ErrMalformedManifest is returned when the required section or library id
// key is absent.
var ErrMalformedManifest = errors.New("malformed manifest")

// Entry is the parsed content of a desktop entry manifest.
type Entry struct {
	// Library is the plugin id (library/module name)
	Library string

	// Name is the display name; repeated keys joined with a space
	Name string

	// Comment is the description; repeated keys joined with newlines
	Comment string

	// Manual is the declared manual file path, relative to the plugin's
	// install directory. Empty if none declared.
	Manual string
}

// Parse parses manifest text into an Entry.
func Parse(text string) (*Entry, error) {
	return parse([]byte(text))
}

// ParseFile reads and parses a manifest file.
func ParseFile(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Entry, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}

	sec, err := f.GetSection(SectionName)
	if err != nil {
		return nil, fmt.Errorf("%w: missing [%s] section", ErrMalformedManifest, SectionName)
	}

	entry := &Entry{
		Library: strings.TrimSpace(joinShadows(sec, KeyLibrary, " ")),
		Name:    joinShadows(sec, KeyName, " "),
		Comment: joinShadows(sec, KeyComment, "\n"),
		Manual:  joinShadows(sec, KeyManual, ""),
	}

	if entry.Library == "" {
		return nil, fmt.Errorf("%w: missing %s key", ErrMalformedManifest, KeyLibrary)
	}

	return entry, nil
}

// joinShadows returns a key's values joined with sep. Shadowed (repeated)
// keys contribute in declaration order.
func joinShadows(sec *ini.Section, name, sep string) string {
	key, err := sec.GetKey(name)
	if err != nil {
		return ""
	}

	values := key.ValueWithShadows()
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	return strings.Join(nonEmpty, sep)
}

// Serialize renders an Entry back into manifest text.
func Serialize(e *Entry) (string, error) {
	if e == nil || e.Library == "" {
		return "", fmt.Errorf("%w: library id is required", ErrMalformedManifest)
	}

	f := ini.Empty(ini.LoadOptions{AllowShadows: true})
	sec, err := f.NewSection(SectionName)
	if err != nil {
		return "", fmt.Errorf("failed to build manifest: %w", err)
	}

	set := func(name, value string) error {
		if value == "" {
			return nil
		}
		// Multi-line values are emitted as repeated keys, mirroring how
		// Parse joins them back together.
		lines := strings.Split(value, "\n")
		key, err := sec.NewKey(name, lines[0])
		if err != nil {
			return err
		}
		for _, line := range lines[1:] {
			if err := key.AddShadow(line); err != nil {
				return err
			}
		}
		return nil
	}

	if err := set(KeyLibrary, e.Library); err != nil {
		return "", fmt.Errorf("failed to build manifest: %w", err)
	}
	if err := set(KeyName, e.Name); err != nil {
		return "", fmt.Errorf("failed to build manifest: %w", err)
	}
	if err := set(KeyComment, e.Comment); err != nil {
		return "", fmt.Errorf("failed to build manifest: %w", err)
	}
	if err := set(KeyManual, e.Manual); err != nil {
		return "", fmt.Errorf("failed to build manifest: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return buf.String(), nil
}
