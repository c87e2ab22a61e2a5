package converter

import "os"

// Constants defining default values for configuration options.
// These are also used as viper defaults by the CLI config loader.
const (
	// DefaultWorkerFraction is the share of CPUs used when no worker count is set.
	DefaultWorkerFraction = 0.8
	// DefaultEncoding decodes input files as strict UTF-8.
	DefaultEncoding = "utf-8"
	// DefaultEnsureASCII escapes every non-ASCII character in the JSON output.
	DefaultEnsureASCII = true
	// DefaultFailOnError keeps the process exit status at zero when files fail.
	DefaultFailOnError = false
	// DefaultTuiEnabled is the default state for the terminal progress UI.
	DefaultTuiEnabled = true
	// DefaultVerbose is the default state for debug logging.
	DefaultVerbose = false
	// DefaultOutputFormat is the default format for the final summary.
	DefaultOutputFormat = OutputFormatText
)

// DefaultExtensions is the suffix set discovered when none is configured.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}

// Output layout.
const (
	// OutputFileSuffix is appended to the source file name to form the output name.
	OutputFileSuffix = ".json"
	// JSONIndent is the indentation configured on the JSON encoder.
	JSONIndent = "    "

	outputFileMode os.FileMode = 0o644
	outputDirMode  os.FileMode = 0o755
)

// Constants related to report schema.
const (
	// ReportSchemaVersion indicates the version of the JSON/YAML report structure.
	ReportSchemaVersion = "1.0"
)

// Constants defining skip reasons used in the Report.
const (
	SkipReasonCancelled = "cancelled"
)
