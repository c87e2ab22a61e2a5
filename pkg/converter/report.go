package converter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Report summarizes the result of a single ConvertTree run.
type Report struct {
	Summary        ReportSummary `json:"summary" yaml:"summary"`
	ConvertedFiles []FileInfo    `json:"convertedFiles" yaml:"convertedFiles"`
	SkippedFiles   []SkippedInfo `json:"skippedFiles" yaml:"skippedFiles"`
	Errors         []ErrorInfo   `json:"errors" yaml:"errors"`
}

// ReportSummary contains aggregated statistics for a run.
type ReportSummary struct {
	RunID           string    `json:"runId" yaml:"runId"`
	InputPath       string    `json:"inputPath" yaml:"inputPath"`
	OutputMode      string    `json:"outputMode" yaml:"outputMode"`
	Extensions      []string  `json:"extensions" yaml:"extensions"`
	Workers         int       `json:"workers" yaml:"workers"`
	TotalFiles      int       `json:"totalFiles" yaml:"totalFiles"`
	ConvertedCount  int       `json:"convertedCount" yaml:"convertedCount"`
	SkippedCount    int       `json:"skippedCount" yaml:"skippedCount"`
	ErrorCount      int       `json:"errorCount" yaml:"errorCount"`
	Cancelled       bool      `json:"cancelled" yaml:"cancelled"`
	DurationSeconds float64   `json:"durationSeconds" yaml:"durationSeconds"`
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
	SchemaVersion   string    `json:"schemaVersion" yaml:"schemaVersion"`
}

// FileInfo details a single file that was converted.
type FileInfo struct {
	Path       string `json:"path" yaml:"path"`
	OutputPath string `json:"outputPath" yaml:"outputPath"`
	SizeBytes  int64  `json:"sizeBytes" yaml:"sizeBytes"`
	MediaType  string `json:"mediaType" yaml:"mediaType"`
	Encoding   string `json:"encoding" yaml:"encoding"`
	DurationMs int64  `json:"durationMs" yaml:"durationMs"`
}

// SkippedInfo details a discovered file that was never converted.
type SkippedInfo struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// ErrorInfo details a per-file conversion failure.
type ErrorInfo struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// HasFailures reports whether any file failed to convert.
func (r Report) HasFailures() bool {
	return r.Summary.ErrorCount > 0
}

// sortByPath orders every per-file list by path so reports are stable across runs.
func (r *Report) sortByPath() {
	sort.Slice(r.ConvertedFiles, func(i, j int) bool { return r.ConvertedFiles[i].Path < r.ConvertedFiles[j].Path })
	sort.Slice(r.SkippedFiles, func(i, j int) bool { return r.SkippedFiles[i].Path < r.SkippedFiles[j].Path })
	sort.Slice(r.Errors, func(i, j int) bool { return r.Errors[i].Path < r.Errors[j].Path })
}

// WriteReport renders report to w in the given format. OutputFormatNone writes nothing.
func WriteReport(w io.Writer, report Report, format OutputFormat) error {
	switch format {
	case OutputFormatNone:
		return nil
	case OutputFormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to marshal report to yaml: %w", err)
		}
		return enc.Close()
	case OutputFormatText, "":
		_, err := io.WriteString(w, formatTextReport(report))
		return err
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidInput, format)
	}
}

func formatTextReport(r Report) string {
	var b strings.Builder
	s := r.Summary
	fmt.Fprintf(&b, "Run %s finished in %.2fs\n", s.RunID, s.DurationSeconds)
	fmt.Fprintf(&b, "  Input:     %s\n", s.InputPath)
	fmt.Fprintf(&b, "  Output:    %s\n", s.OutputMode)
	fmt.Fprintf(&b, "  Workers:   %d\n", s.Workers)
	fmt.Fprintf(&b, "  Found:     %d\n", s.TotalFiles)
	fmt.Fprintf(&b, "  Converted: %d\n", s.ConvertedCount)
	if s.SkippedCount > 0 {
		fmt.Fprintf(&b, "  Skipped:   %d\n", s.SkippedCount)
	}
	fmt.Fprintf(&b, "  Failed:    %d\n", s.ErrorCount)
	if s.Cancelled {
		b.WriteString("  Run was cancelled before all files were dispatched.\n")
	}
	if len(r.Errors) > 0 {
		b.WriteString("Errors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s: %s\n", e.Path, e.Error)
		}
	}
	return b.String()
}
