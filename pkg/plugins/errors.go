package plugins

import "errors"

// Engine errors.
var (
	// ErrInvalidArgument is returned when a public operation receives an
	// argument that violates its contract. It signals a caller bug and is
	// never swallowed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("plugin not found")

	// ErrCancelled is returned when a confirmation decision aborted an
	// operation. It reports cancellation, not failure.
	ErrCancelled = errors.New("operation cancelled")

	// ErrNoManifest is returned when an archive contains no manifest file.
	ErrNoManifest = errors.New("no manifest found in archive")

	// ErrAmbiguousManifest is returned when an archive contains more than
	// one manifest file.
	ErrAmbiguousManifest = errors.New("multiple manifests found in archive")

	// ErrMissingEntryPoint is returned when an archive has no entry module
	// for the id its manifest declares.
	ErrMissingEntryPoint = errors.New("entry module not found in archive")

	// ErrUnsafeArchive is returned when an archive entry would escape the
	// extraction directory.
	ErrUnsafeArchive = errors.New("unsafe path in archive")
)
