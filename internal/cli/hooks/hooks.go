package hooks

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stackvity/json-mirror/pkg/converter"
)

// --- TUI Message Structs ---

// RunStartMsg signals that discovery finished and Total files are about to be converted.
type RunStartMsg struct{ Total int }

// FileStatusUpdateMsg signals a change in a file's conversion status.
type FileStatusUpdateMsg struct {
	Path     string
	Status   converter.Status
	Message  string
	Duration time.Duration
}

// RunCompleteMsg signals the completion of the entire conversion run.
type RunCompleteMsg struct{ Report converter.Report }

// --- Hook Implementation ---

// CLIHooks implements the converter.Hooks interface, bridging library events
// to the CLI's UI layer (TUI, Logger, Progress Bar).
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram
	progressBar    ProgressBar
	mu             sync.Mutex // Protects progressBar
}

// TUIProgram defines the interface needed to interact with the Bubble Tea program.
type TUIProgram interface {
	Send(msg interface{})
}

// ProgressBar defines the interface needed to report progress without the TUI.
type ProgressBar interface {
	SetTotal(total int) error
	Add(num int) error
	Describe(description string) error
	Close() error
}

// --- No-Op Implementations for Decoupling ---

// NoOpTUIProgram provides a default null implementation.
type NoOpTUIProgram struct{}

// Send implements TUIProgram.
func (n *NoOpTUIProgram) Send(msg interface{}) {}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// SetTotal implements ProgressBar.
func (n *NoOpProgressBar) SetTotal(total int) error { return nil }

// Add implements ProgressBar.
func (n *NoOpProgressBar) Add(num int) error { return nil }

// Describe implements ProgressBar.
func (n *NoOpProgressBar) Describe(description string) error { return nil }

// Close implements ProgressBar.
func (n *NoOpProgressBar) Close() error { return nil }

// --- Constructor ---

// NewCLIHooks creates a new CLIHooks instance.
// Pass nil for tuiProgram or progressBar if not applicable; NoOp versions will be used.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiProg TUIProgram, progBar ProgressBar) converter.Hooks {
	if tuiProg == nil {
		tuiProg = &NoOpTUIProgram{}
	}
	if progBar == nil {
		progBar = &NoOpProgressBar{}
	}
	return &CLIHooks{
		logger:         logger,
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
		progressBar:    progBar,
	}
}

// --- Interface Method Implementations ---

// OnRunStart forwards the file count to the TUI or sizes the progress bar.
func (h *CLIHooks) OnRunStart(total int) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(RunStartMsg{Total: total})
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progressBar.SetTotal(total)
}

// OnFileStatusUpdate handles events when a file's conversion status changes.
// Failures are already logged by the engine, so they are not logged again here.
func (h *CLIHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(FileStatusUpdateMsg{
			Path:     path,
			Status:   status,
			Message:  message,
			Duration: duration,
		})
		return nil
	}

	if h.verboseEnabled && status != converter.StatusFailed {
		attrs := []any{
			slog.String("path", path),
			slog.String("status", string(status)),
		}
		if duration > 0 {
			attrs = append(attrs, slog.Duration("duration", duration))
		}
		if message != "" {
			attrs = append(attrs, slog.String("message", message))
		}
		h.logger.Debug("File status updated", attrs...)
	}

	if status.IsFinal() {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.progressBar.Add(1)
	}
	return nil
}

// OnRunComplete sends the final report to the TUI or finalizes the progress bar.
func (h *CLIHooks) OnRunComplete(report converter.Report) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(RunCompleteMsg{Report: report})
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.progressBar.Describe(fmt.Sprintf("converted %d, failed %d", report.Summary.ConvertedCount, report.Summary.ErrorCount))
	return h.progressBar.Close()
}

// --- Log-based progress ---

// LogProgress is a ProgressBar that writes a line every time another step of
// the run completes. It is used when stderr is not a terminal.
type LogProgress struct {
	logger   *slog.Logger
	steps    int
	total    int
	done     int
	reported int
	desc     string
}

// NewLogProgress reports progress through logger in steps increments (10 means every 10%).
func NewLogProgress(logger *slog.Logger, steps int) *LogProgress {
	if steps < 1 {
		steps = 1
	}
	return &LogProgress{logger: logger, steps: steps}
}

// SetTotal implements ProgressBar.
func (p *LogProgress) SetTotal(total int) error {
	p.total = total
	p.done = 0
	p.reported = 0
	return nil
}

// Add implements ProgressBar.
func (p *LogProgress) Add(num int) error {
	p.done += num
	if p.total <= 0 {
		return nil
	}
	step := p.done * p.steps / p.total
	if step > p.reported {
		p.reported = step
		p.logger.Info("Conversion progress",
			slog.Int("done", p.done),
			slog.Int("total", p.total),
			slog.Int("percent", p.done*100/p.total),
		)
	}
	return nil
}

// Describe implements ProgressBar.
func (p *LogProgress) Describe(description string) error {
	p.desc = description
	return nil
}

// Close implements ProgressBar.
func (p *LogProgress) Close() error {
	if p.desc != "" {
		p.logger.Debug("Progress finished", slog.String("result", p.desc))
	}
	return nil
}
