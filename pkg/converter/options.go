package converter

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/stackvity/json-mirror/pkg/converter/encoding"
)

// Hooks defines callbacks for progress updates during a run.
// All methods are invoked from a single goroutine, in order.
type Hooks interface {
	// OnRunStart is called once with the number of files about to be dispatched.
	OnRunStart(total int) error
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	OnRunComplete(report Report) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnRunStart implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunStart(total int) error { return nil }

// OnFileStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error {
	return nil
}

// OnRunComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }

// Converter converts a single file. FileConverter is the default implementation;
// tests inject their own through Options.Converter.
type Converter interface {
	Convert(path string, mode OutputMode) (FileInfo, error)
}

// Options holds all configuration for a ConvertTree run.
type Options struct {
	// --- Core Paths ---
	InputPath   string     `mapstructure:"input_dir"`    // Required: root directory to scan
	OutputDir   string     `mapstructure:"output_dir"`   // Shared output directory (exclusive with RelativeDir)
	RelativeDir string     `mapstructure:"relative_dir"` // Per-file output subdirectory (exclusive with OutputDir)
	OutputMode  OutputMode `mapstructure:"-"`            // Derived from OutputDir/RelativeDir when unset

	// --- Discovery & Conversion ---
	Extensions  []string `mapstructure:"extensions"`   // Empty means DefaultExtensions
	Workers     int      `mapstructure:"num_workers"`  // 0 means DefaultWorkers()
	Encoding    string   `mapstructure:"encoding"`     // "utf-8", "auto" or a charset label
	EnsureASCII bool     `mapstructure:"ensure_ascii"` // Escape non-ASCII as \uXXXX

	// --- CLI Behavior ---
	FailOnError    bool         `mapstructure:"fail_on_error"`
	OutputFormat   OutputFormat `mapstructure:"output_format"`
	TuiEnabled     bool         `mapstructure:"tui_enabled"`
	Verbose        bool         `mapstructure:"verbose"`
	ConfigFilePath string       `mapstructure:"-"`
	AppVersion     string       `mapstructure:"-"`

	// --- Injected Dependencies ---
	Filesystem billy.Filesystem `mapstructure:"-"` // Defaults to the OS filesystem
	EventHooks Hooks            `mapstructure:"-"` // Defaults to NoOpHooks
	Logger     slog.Handler     `mapstructure:"-"` // Required: logging backend
	Converter  Converter        `mapstructure:"-"` // Defaults to a FileConverter built from these options
}

// DefaultWorkers returns 80% of the available CPUs, rounded down, and at least 1.
func DefaultWorkers() int {
	return workersFor(runtime.NumCPU())
}

func workersFor(cpus int) int {
	return max(1, int(math.Floor(float64(cpus)*DefaultWorkerFraction)))
}

// Validate checks the options and fills in defaults for unset fields. It returns
// an error wrapping ErrInvalidInput on the first problem found.
func (o *Options) Validate() error {
	if o.Logger == nil {
		return fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrInvalidInput)
	}
	if o.InputPath == "" {
		return fmt.Errorf("%w: input_dir is required", ErrInvalidInput)
	}

	if o.OutputMode.IsZero() {
		mode, err := OutputModeFrom(o.OutputDir, o.RelativeDir)
		if err != nil {
			return err
		}
		o.OutputMode = mode
	}
	if err := o.OutputMode.Validate(); err != nil {
		return err
	}

	switch {
	case o.Workers < 0:
		return fmt.Errorf("%w: num_workers must be positive, got %d", ErrInvalidInput, o.Workers)
	case o.Workers == 0:
		o.Workers = DefaultWorkers()
	}

	if len(o.Extensions) == 0 {
		o.Extensions = slices.Clone(DefaultExtensions)
	}
	if len(NewExtensionSet(o.Extensions...)) == 0 {
		return fmt.Errorf("%w: extensions must contain at least one non-empty suffix", ErrInvalidInput)
	}

	if o.Encoding == "" {
		o.Encoding = DefaultEncoding
	}
	if _, err := encoding.NewDecoder(o.Encoding); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if o.OutputFormat == "" {
		o.OutputFormat = DefaultOutputFormat
	}
	if !slices.Contains(OutputFormats, o.OutputFormat) {
		return fmt.Errorf("%w: unknown output_format %q", ErrInvalidInput, o.OutputFormat)
	}

	if o.Filesystem == nil {
		o.Filesystem = osfs.New("/")
	}
	if o.EventHooks == nil {
		o.EventHooks = &NoOpHooks{}
	}
	return nil
}
