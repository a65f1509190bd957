package plugins

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/easelhq/pluginman/pkg/config"
	"github.com/easelhq/pluginman/pkg/host"
)

// Installer validates plugin archives and extracts them into the install
// root.
type Installer struct {
	paths     config.Paths
	host      host.Host
	lifecycle *Lifecycle
	confirmer Confirmer
	metrics   *Metrics
	log       *logrus.Logger
}

// NewInstaller creates an installer that activates plugins through the
// given lifecycle controller after a successful extraction.
func NewInstaller(paths config.Paths, h host.Host, lifecycle *Lifecycle, log *logrus.Logger) *Installer {
	if log == nil {
		log = logrus.New()
	}
	return &Installer{
		paths:     paths,
		host:      h,
		lifecycle: lifecycle,
		log:       log,
	}
}

// SetConfirmer sets the confirmer consulted when the target directory
// already exists and the overwrite policy is DecisionAsk. Without one,
// DecisionAsk resolves to no.
func (i *Installer) SetConfirmer(c Confirmer) {
	i.confirmer = c
}

// SetMetrics attaches operation counters.
func (i *Installer) SetMetrics(m *Metrics) {
	i.metrics = m
}

// Install validates the archive at archivePath and extracts it.
//
// The archive must contain exactly one manifest (*.desktop) and an entry
// module at <id>/<entry file> relative to the manifest's directory. Plugin
// files are extracted to a staging directory first and renamed into place,
// so a failed extraction never leaves a partial plugin directory. On
// success the plugin is activated before returning; an activation failure
// fails the install, though the extracted files remain on disk.
//
// Every failure is logged and returns a nil record; the error carries the
// reason for callers that want it. A rejected overwrite returns
// ErrCancelled, which reports cancellation rather than failure.
func (i *Installer) Install(archivePath string, overwrite Decision) (*Record, error) {
	rec, err := i.install(archivePath, overwrite)
	if err != nil {
		i.log.Warnf("Install of %s failed: %v", archivePath, err)
		i.metrics.observe(opInstall, installResult(err))
		return nil, err
	}

	i.metrics.observe(opInstall, resultOK)
	return rec, nil
}

func installResult(err error) string {
	switch {
	case err == nil:
		return resultOK
	case isRejection(err):
		return resultRejected
	default:
		return resultError
	}
}

func isRejection(err error) bool {
	for _, sentinel := range []error{ErrNoManifest, ErrAmbiguousManifest, ErrMissingEntryPoint, ErrCancelled, ErrUnsafeArchive} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (i *Installer) install(archivePath string, overwrite Decision) (*Record, error) {
	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	manifestEntry, err := findManifest(archive)
	if err != nil {
		return nil, err
	}

	manifestData, err := readEntry(manifestEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest from archive: %w", err)
	}

	rec, err := NewRecordFromContent(string(manifestData), i.paths, i.host.Settings())
	if err != nil {
		return nil, err
	}

	entryFile := findEntryModule(archive, rec.ID, i.paths.EntryFile)
	if entryFile == "" {
		return nil, fmt.Errorf("%w: %s/%s", ErrMissingEntryPoint, rec.ID, i.paths.EntryFile)
	}

	if _, err := os.Stat(rec.InstallPath); err == nil {
		decision := overwrite
		if decision == DecisionAsk {
			if i.confirmer == nil {
				decision = DecisionNo
			} else {
				decision = i.confirmer.ConfirmOverwrite(rec)
			}
		}
		if decision != DecisionYes {
			return nil, fmt.Errorf("%w: plugin already installed at %s", ErrCancelled, rec.InstallPath)
		}
	}

	actionData, err := i.extract(archive, rec, entryFile, manifestData)
	if err != nil {
		return nil, err
	}

	if err := i.commitSupportFiles(rec, manifestData, actionData); err != nil {
		return nil, err
	}

	if err := i.lifecycle.Activate(rec); err != nil {
		// extracted files and the sentinel stay behind; a later install
		// of the same archive overwrites them
		return nil, fmt.Errorf("plugin %s extracted but failed to activate: %w", rec.ID, err)
	}

	i.log.Infof("Installed plugin %s to %s", rec.ID, rec.InstallPath)
	return rec, nil
}

// findManifest locates the archive's single manifest entry.
func findManifest(archive *zip.ReadCloser) (*zip.File, error) {
	var found *zip.File
	count := 0
	for _, f := range archive.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".desktop") {
			continue
		}
		found = f
		count++
	}

	switch count {
	case 0:
		return nil, ErrNoManifest
	case 1:
		return found, nil
	default:
		return nil, fmt.Errorf("%w: %d found", ErrAmbiguousManifest, count)
	}
}

// findEntryModule returns the archive name of the plugin's entry module,
// or empty when absent.
func findEntryModule(archive *zip.ReadCloser, id, entryFile string) string {
	want := id + "/" + entryFile
	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.Name == want || strings.HasSuffix(f.Name, "/"+want) {
			return f.Name
		}
	}
	return ""
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// extract writes the plugin's files into a staging directory and renames
// it into place. The manifest and action definition are returned to the
// caller instead of being extracted, since they belong outside the plugin
// directory. Archive entries are partitioned by name: the manifest and
// <id>.action files are recognised by basename; everything under the
// entry module's directory prefix lands in the plugin directory with the
// prefix stripped; anything else is ignored.
func (i *Installer) extract(archive *zip.ReadCloser, rec *Record, entryName string, manifestData []byte) ([]byte, error) {
	if err := os.MkdirAll(i.paths.InstallRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create install root: %w", err)
	}

	staging := filepath.Join(i.paths.InstallRoot, fmt.Sprintf(".staging-%s-%s", rec.ID, uuid.NewString()))
	if err := os.MkdirAll(staging, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	prefix := path.Dir(entryName)
	if prefix == "." {
		prefix = ""
	} else {
		prefix += "/"
	}

	var actionData []byte
	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(f.Name)) {
			return nil, fmt.Errorf("%w: %s", ErrUnsafeArchive, f.Name)
		}

		base := path.Base(f.Name)
		switch base {
		case rec.ID + ".desktop":
			// already read
			continue
		case rec.ID + ".action":
			data, err := readEntry(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read action file from archive: %w", err)
			}
			actionData = data
			continue
		}

		rel := f.Name
		if prefix != "" {
			if !strings.HasPrefix(f.Name, prefix) {
				continue
			}
			rel = f.Name[len(prefix):]
		}
		if rel == "" {
			continue
		}

		dest := filepath.Join(staging, filepath.FromSlash(rel))
		if err := writeEntry(f, dest); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}

	// commit: replace any existing install atomically-enough via rename
	if err := os.RemoveAll(rec.InstallPath); err != nil {
		return nil, fmt.Errorf("failed to clear existing install directory: %w", err)
	}
	if err := os.Rename(staging, rec.InstallPath); err != nil {
		return nil, fmt.Errorf("failed to move plugin into place: %w", err)
	}

	return actionData, nil
}

func writeEntry(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// commitSupportFiles writes the manifest to the install root and the
// action definition to the actions directory.
func (i *Installer) commitSupportFiles(rec *Record, manifestData, actionData []byte) error {
	if err := os.WriteFile(rec.ManifestPath, manifestData, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if actionData != nil {
		if err := os.MkdirAll(i.paths.ActionsDir, 0755); err != nil {
			return fmt.Errorf("failed to create actions directory: %w", err)
		}
		if err := os.WriteFile(i.paths.ActionFilePath(rec.ID), actionData, 0644); err != nil {
			return fmt.Errorf("failed to write action file: %w", err)
		}
	}

	return nil
}
