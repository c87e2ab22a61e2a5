package converter

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/stackvity/json-mirror/pkg/util"
)

// Status defines the possible processing states of a file during a run.
type Status string

// Constants representing the defined file processing statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// IsFinal reports whether s is a terminal state for a file.
func (s Status) IsFinal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusSkipped
}

// OutputFormat defines the format of the run summary printed to standard output.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatNone OutputFormat = "none"
)

// OutputFormats lists every accepted OutputFormat.
var OutputFormats = []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatNone}

// --- Output mode ---

type outputKind int

const (
	outputUnset outputKind = iota
	outputAbsolute
	outputRelative
)

// OutputMode selects where each file's JSON copy is written. It is either an
// absolute shared directory or a subdirectory relative to each file's parent.
// Build one with AbsoluteOutput or RelativeOutput; the zero value is invalid.
type OutputMode struct {
	kind outputKind
	path string
}

// AbsoluteOutput writes every output into dir, whatever the source file's location.
func AbsoluteOutput(dir string) OutputMode {
	return OutputMode{kind: outputAbsolute, path: dir}
}

// RelativeOutput writes each output into <file's parent>/subpath.
func RelativeOutput(subpath string) OutputMode {
	return OutputMode{kind: outputRelative, path: subpath}
}

// OutputModeFrom builds an OutputMode from the two mutually exclusive settings.
// Exactly one of outputDir and relativeDir must be non-empty.
func OutputModeFrom(outputDir, relativeDir string) (OutputMode, error) {
	switch {
	case outputDir != "" && relativeDir != "":
		return OutputMode{}, fmt.Errorf("%w: only one of output_dir or relative_dir may be provided", ErrInvalidInput)
	case outputDir != "":
		return AbsoluteOutput(outputDir), nil
	case relativeDir != "":
		return RelativeOutput(relativeDir), nil
	default:
		return OutputMode{}, fmt.Errorf("%w: either output_dir or relative_dir must be provided", ErrInvalidInput)
	}
}

// IsZero reports whether m was never set.
func (m OutputMode) IsZero() bool { return m.kind == outputUnset }

// IsAbsolute reports whether m writes into a single shared directory.
func (m OutputMode) IsAbsolute() bool { return m.kind == outputAbsolute }

// Path returns the configured directory or subpath.
func (m OutputMode) Path() string { return m.path }

// String implements fmt.Stringer.
func (m OutputMode) String() string {
	switch m.kind {
	case outputAbsolute:
		return "absolute(" + m.path + ")"
	case outputRelative:
		return "relative(" + m.path + ")"
	default:
		return "unset"
	}
}

// Validate checks that m was constructed and carries a non-empty path.
func (m OutputMode) Validate() error {
	if m.kind == outputUnset {
		return fmt.Errorf("%w: output mode is not set", ErrInvalidInput)
	}
	if strings.TrimSpace(m.path) == "" {
		return fmt.Errorf("%w: output mode %s has an empty path", ErrInvalidInput, m)
	}
	return nil
}

// Dir returns the absolute output directory for the file at filePath.
func (m OutputMode) Dir(filePath string) (string, error) {
	switch m.kind {
	case outputAbsolute:
		return filepath.Abs(m.path)
	case outputRelative:
		return util.ResolveDir(filepath.Dir(filePath), m.path)
	default:
		return "", fmt.Errorf("%w: output mode is not set", ErrInvalidInput)
	}
}

// --- Extension set ---

// ExtensionSet is a set of lower-cased file suffixes, each with a leading dot.
type ExtensionSet map[string]struct{}

// NewExtensionSet normalizes exts into a set. Empty entries are dropped.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, e := range exts {
		if n := util.NormalizeExtension(e); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Contains reports whether suffix (any case) is in the set.
func (s ExtensionSet) Contains(suffix string) bool {
	if suffix == "" {
		return false
	}
	_, ok := s[strings.ToLower(suffix)]
	return ok
}

// Sorted returns the members in lexical order.
func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}
