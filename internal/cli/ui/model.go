package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stackvity/json-mirror/internal/cli/hooks"
	"github.com/stackvity/json-mirror/pkg/converter"
)

const (
	// maxFailureLines bounds the failure log shown under the progress bar.
	maxFailureLines = 5
	// progressMargin is the horizontal space reserved around the progress bar.
	progressMargin   = 4
	maxProgressWidth = 80
)

// Model represents the state of the TUI application.
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	appVersion   string
	width        int
	height       int
	initialized  bool
	summary      Summary
	phaseMessage string
	// failures holds the most recent failures, oldest first.
	failures []failureEntry
	// quitting is set when the user pressed q or ctrl+c before the run completed.
	quitting bool
	done     bool
}

type failureEntry struct {
	path    string
	message string
}

// Summary holds the aggregated statistics displayed in the TUI footer.
type Summary struct {
	TotalFiles     int
	InFlight       int
	ConvertedCount int
	SkippedCount   int
	ErrorCount     int
	StartTime      time.Time
}

// Finished returns the number of files that reached a final status.
func (s Summary) Finished() int {
	return s.ConvertedCount + s.SkippedCount + s.ErrorCount
}

// --- Bubble Tea Interface Implementations ---

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages (user input, hook events) and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-progressMargin, 10), maxProgressWidth)
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.done {
				m.quitting = true
			}
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.quitting || m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// --- Custom Messages from Library Hooks ---
	case hooks.RunStartMsg:
		m.summary.TotalFiles = msg.Total
		m.phaseMessage = "Converting..."

	case hooks.FileStatusUpdateMsg:
		if msg.Status == converter.StatusProcessing {
			m.summary.InFlight++
			return m, nil
		}
		if !msg.Status.IsFinal() {
			return m, nil
		}
		if msg.Status != converter.StatusSkipped && m.summary.InFlight > 0 {
			m.summary.InFlight--
		}
		m.incrementSummaryCount(msg.Status)
		if msg.Status == converter.StatusFailed {
			m.recordFailure(msg.Path, msg.Message)
		}

	case hooks.RunCompleteMsg:
		s := msg.Report.Summary
		m.summary.TotalFiles = s.TotalFiles
		m.summary.ConvertedCount = s.ConvertedCount
		m.summary.SkippedCount = s.SkippedCount
		m.summary.ErrorCount = s.ErrorCount
		m.summary.InFlight = 0
		m.phaseMessage = "Complete"
		if s.Cancelled {
			m.phaseMessage = "Cancelled"
		}
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current state of the TUI model.
func (m *Model) View() string {
	if m.quitting {
		return "Stopping after in-flight files finish...\n"
	}
	if !m.initialized {
		return "Initializing..."
	}

	// --- Header ---
	headerLeft := fmt.Sprintf("json-mirror %s", m.appVersion)
	headerRight := m.phaseMessage
	if !m.done {
		headerRight = m.spinner.View() + " " + m.phaseMessage
	}
	headerCenter := ""
	if gap := m.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight) - 2; gap > 0 {
		headerCenter = strings.Repeat(" ", gap)
	}
	header := HeaderStyle.Width(m.width).Render(headerLeft + headerCenter + headerRight)

	// --- Progress ---
	bar := m.progress.ViewAs(m.percent())
	counts := fmt.Sprintf("%d/%d files", m.summary.Finished(), m.summary.TotalFiles)

	// --- Failures ---
	var failures []string
	for _, f := range m.failures {
		failures = append(failures, StatusStyleFailed.Render("✗ "+filepath.Base(f.path))+" "+FailureMsgStyle.Render(f.message))
	}
	if hidden := m.summary.ErrorCount - len(m.failures); hidden > 0 {
		failures = append(failures, FailureMsgStyle.Render(fmt.Sprintf("… and %d more", hidden)))
	}

	// --- Footer ---
	elapsed := time.Since(m.summary.StartTime).Round(time.Millisecond)
	footerText := fmt.Sprintf("%s | %s | %s | In flight: %d | Elapsed: %s",
		StatusStyleSuccess.Render(fmt.Sprintf("Converted: %d", m.summary.ConvertedCount)),
		StatusStyleSkipped.Render(fmt.Sprintf("Skipped: %d", m.summary.SkippedCount)),
		StatusStyleFailed.Render(fmt.Sprintf("Failed: %d", m.summary.ErrorCount)),
		m.summary.InFlight,
		elapsed,
	)
	footer := FooterStyle.Width(m.width).Render(footerText + "  q: quit")

	sections := []string{header, "", bar + " " + counts}
	if len(failures) > 0 {
		sections = append(sections, "", strings.Join(failures, "\n"))
	}
	sections = append(sections, "", footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// --- Helper Methods ---

// NewModel creates the initial model for the TUI.
func NewModel(appVersion string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorStatusProcessing)

	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	p.Width = maxProgressWidth / 2

	return Model{
		spinner:      s,
		progress:     p,
		appVersion:   appVersion,
		summary:      Summary{StartTime: time.Now()},
		phaseMessage: "Discovering files...",
		failures:     make([]failureEntry, 0, maxFailureLines),
	}
}

// Quitting reports whether the user asked to stop before the run completed.
func (m *Model) Quitting() bool { return m.quitting }

// Summary returns the counters as currently displayed.
func (m *Model) Summary() Summary { return m.summary }

func (m *Model) percent() float64 {
	if m.summary.TotalFiles == 0 {
		if m.done {
			return 1
		}
		return 0
	}
	return float64(m.summary.Finished()) / float64(m.summary.TotalFiles)
}

// incrementSummaryCount updates summary counts based on the new final status.
func (m *Model) incrementSummaryCount(status converter.Status) {
	switch status {
	case converter.StatusSuccess:
		m.summary.ConvertedCount++
	case converter.StatusSkipped:
		m.summary.SkippedCount++
	case converter.StatusFailed:
		m.summary.ErrorCount++
	}
}

func (m *Model) recordFailure(path, message string) {
	if len(m.failures) == maxFailureLines {
		copy(m.failures, m.failures[1:])
		m.failures = m.failures[:maxFailureLines-1]
	}
	m.failures = append(m.failures, failureEntry{path: path, message: message})
}

// --- Styles ---

const (
	ColorHeaderFg = lipgloss.Color("252") // Light Gray
	ColorHeaderBg = lipgloss.Color("62")  // Purple

	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56") // Dark Pink/Purple

	ColorFailureMsgFg = lipgloss.Color("244") // Dim gray

	ColorStatusSuccess    = lipgloss.Color("40")  // Green
	ColorStatusFailed     = lipgloss.Color("196") // Red
	ColorStatusSkipped    = lipgloss.Color("214") // Orange/Yellow
	ColorStatusProcessing = lipgloss.Color("205") // Pink
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1)

	FailureMsgStyle = lipgloss.NewStyle().Foreground(ColorFailureMsgFg)

	StatusStyleSuccess = lipgloss.NewStyle().Foreground(ColorStatusSuccess)
	StatusStyleFailed  = lipgloss.NewStyle().Foreground(ColorStatusFailed)
	StatusStyleSkipped = lipgloss.NewStyle().Foreground(ColorStatusSkipped)
)
