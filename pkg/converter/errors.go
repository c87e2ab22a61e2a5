package converter

import "errors"

// --- Exported Error Variables ---
// Library users can check against these using errors.Is.

var (
	// ErrInvalidInput indicates a bad input root or an invalid option combination
	// (both or neither output modes, non-positive worker count, unknown encoding).
	// It is returned before any file is discovered or converted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConversion is the category for every per-file failure. Such failures are
	// logged and recorded in Report.Errors; they never abort the run.
	ErrConversion = errors.New("conversion failed")

	// ErrReadFailed indicates a failure to read a source file.
	ErrReadFailed = errors.New("failed to read file")

	// ErrDecodeFailed indicates the file content could not be decoded as text.
	ErrDecodeFailed = errors.New("failed to decode file content")

	// ErrEncodeFailed indicates the text could not be serialized as a JSON string.
	ErrEncodeFailed = errors.New("failed to encode json")

	// ErrMkdirFailed indicates a failure to resolve or create an output directory.
	ErrMkdirFailed = errors.New("failed to create output directory")

	// ErrWriteFailed indicates a failure to write the output file.
	ErrWriteFailed = errors.New("failed to write output file")

	// ErrWorkerPanic indicates a conversion task panicked. The panic is recovered
	// and reported like any other per-file failure.
	ErrWorkerPanic = errors.New("conversion task panicked")

	// ErrConversionFailures is returned by the CLI when fail-on-error is enabled
	// and at least one file failed.
	ErrConversionFailures = errors.New("one or more files failed to convert")
)
