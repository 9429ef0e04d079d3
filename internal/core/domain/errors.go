package domain

import "go.trai.ch/zerr"

var (
	// ErrManifestParse is returned when a resource manifest is malformed.
	ErrManifestParse = zerr.New("malformed resource manifest")

	// ErrUnresolvedReference is returned when a scanned generator directive
	// cannot be matched to any header. Fatal: a missing source mapping
	// cannot be guessed.
	ErrUnresolvedReference = zerr.New("no source found for generator reference")

	// ErrToolNotFound is returned when an external generator binary cannot
	// be located during the configuration phase.
	ErrToolNotFound = zerr.New("generator tool not found")

	// ErrToolVersion is returned when a discovered tool reports an
	// unsupported version.
	ErrToolVersion = zerr.New("unsupported generator tool version")

	// ErrMissingSource is returned when a declared source file does not
	// exist.
	ErrMissingSource = zerr.New("declared source not found")

	// ErrDuplicateUnit is returned when two units share a name and directory.
	ErrDuplicateUnit = zerr.New("duplicate build unit")

	// ErrNoUnits is returned when a build is requested without any units.
	ErrNoUnits = zerr.New("no build units declared")

	// ErrDeadlock is returned when every outstanding task defers while
	// nothing is running.
	ErrDeadlock = zerr.New("scheduler deadlock: all outstanding tasks deferred")
)
