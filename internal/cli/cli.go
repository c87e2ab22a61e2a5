// Package cli wires the converter library to the terminal: progress display,
// log routing, the final report on stdout and the exit decision.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/stackvity/json-mirror/internal/cli/hooks"
	"github.com/stackvity/json-mirror/internal/cli/ui"
	"github.com/stackvity/json-mirror/pkg/converter"
)

// progressSteps is the number of progress lines logged without the TUI.
const progressSteps = 10

// Run converts the tree described by opts, prints the report on stdout and
// returns the error that decides the exit status.
func Run(ctx context.Context, opts converter.Options, logger *slog.Logger, stdout io.Writer) error {
	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	return run(ctx, opts, logger, stdout, os.Stderr, interactive)
}

func run(ctx context.Context, opts converter.Options, logger *slog.Logger, stdout, stderr io.Writer, interactive bool) error {
	var (
		report converter.Report
		err    error
	)
	if interactive && opts.TuiEnabled && !opts.Verbose {
		report, err = runWithTUI(ctx, opts, logger, stderr)
	} else {
		opts.EventHooks = hooks.NewCLIHooks(logger, false, opts.Verbose, nil, hooks.NewLogProgress(logger, progressSteps))
		report, err = converter.ConvertTree(ctx, opts)
	}
	if err != nil {
		logger.Error("Conversion run failed", slog.String("error", err.Error()))
		return err
	}

	if writeErr := converter.WriteReport(stdout, report, opts.OutputFormat); writeErr != nil {
		logger.Error("Failed to write report", slog.String("error", writeErr.Error()))
		return writeErr
	}

	if opts.FailOnError && report.HasFailures() {
		return fmt.Errorf("%w: %d of %d files failed", converter.ErrConversionFailures, report.Summary.ErrorCount, report.Summary.TotalFiles)
	}
	return nil
}

// runWithTUI runs the conversion while the bubbletea program owns stderr. Library
// logs are buffered during the run and written to stderr once the UI has exited.
// Quitting the UI cancels the run; files already converting still finish.
func runWithTUI(ctx context.Context, opts converter.Options, logger *slog.Logger, stderr io.Writer) (converter.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var logBuf bytes.Buffer
	opts.Logger = slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	defer func() {
		if logBuf.Len() > 0 {
			_, _ = stderr.Write(logBuf.Bytes())
		}
	}()

	model := ui.NewModel(opts.AppVersion)
	program := tea.NewProgram(&model, tea.WithOutput(stderr))
	opts.EventHooks = hooks.NewCLIHooks(slog.New(opts.Logger), true, false, program, nil)

	tuiDone := make(chan error, 1)
	go func() {
		_, runErr := program.Run()
		if model.Quitting() {
			cancel()
		}
		tuiDone <- runErr
	}()

	report, err := converter.ConvertTree(ctx, opts)
	if err != nil {
		program.Quit()
	}
	if tuiErr := <-tuiDone; tuiErr != nil {
		logger.Warn("Terminal UI exited with an error", slog.String("error", tuiErr.Error()))
	}
	return report, err
}
