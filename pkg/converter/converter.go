// Package converter mirrors a directory tree of text files into JSON string
// files.
//
// A run has three stages: the Walker discovers files whose suffix is in the
// extension set, the Engine hands them to a bounded worker pool, and each worker
// uses a Converter to write <output dir>/<name>.json containing the file's text
// as one JSON string literal. Per-file failures are logged and collected into the
// Report; only configuration and discovery problems abort a run.
package converter

import (
	"context"
)

// ConvertTree is the main entry point for the library. It validates opts,
// discovers matching files under opts.InputPath and converts them.
//
// A non-nil error means the run never started (ErrInvalidInput) or was cancelled
// during discovery. Conversion failures are reported in Report.Errors instead.
func ConvertTree(ctx context.Context, opts Options) (Report, error) {
	engine, err := NewEngine(opts)
	if err != nil {
		return Report{}, err
	}
	return engine.Run(ctx)
}
