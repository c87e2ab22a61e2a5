// Package testutil provides shared helpers and testify mocks for the
// interfaces defined in pkg/converter.
package testutil

import (
	"sync"
	"time"

	"github.com/stackvity/json-mirror/pkg/converter"
	"github.com/stretchr/testify/mock"
)

// MockConverter provides a mock implementation of the converter.Converter interface.
// Configure expectations using testify/mock methods (e.g., .On("Convert", ...).Return(...)).
type MockConverter struct {
	mock.Mock
}

// Convert mocks the Convert method.
func (m *MockConverter) Convert(path string, mode converter.OutputMode) (converter.FileInfo, error) {
	args := m.Called(path, mode)
	info, _ := args.Get(0).(converter.FileInfo)
	return info, args.Error(1)
}

// MockHooks provides a mock implementation of the converter.Hooks interface.
type MockHooks struct {
	mock.Mock
}

// OnRunStart mocks the OnRunStart method.
func (m *MockHooks) OnRunStart(total int) error {
	args := m.Called(total)
	return args.Error(0)
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report converter.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

// StatusEvent is one OnFileStatusUpdate call captured by RecordingHooks.
type StatusEvent struct {
	Path    string
	Status  converter.Status
	Message string
}

// RecordingHooks is a converter.Hooks that records every call. It is safe for
// concurrent use.
type RecordingHooks struct {
	mu       sync.Mutex
	Total    int
	Events   []StatusEvent
	Reports  []converter.Report
	Started  int
	Finished int
}

// OnRunStart implements converter.Hooks.
func (h *RecordingHooks) OnRunStart(total int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Total = total
	h.Started++
	return nil
}

// OnFileStatusUpdate implements converter.Hooks.
func (h *RecordingHooks) OnFileStatusUpdate(path string, status converter.Status, message string, _ time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, StatusEvent{Path: path, Status: status, Message: message})
	return nil
}

// OnRunComplete implements converter.Hooks.
func (h *RecordingHooks) OnRunComplete(report converter.Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Reports = append(h.Reports, report)
	h.Finished++
	return nil
}

// FinalStatuses returns the last final status seen for each path.
func (h *RecordingHooks) FinalStatuses() map[string]converter.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]converter.Status)
	for _, ev := range h.Events {
		if ev.Status.IsFinal() {
			out[ev.Path] = ev.Status
		}
	}
	return out
}
