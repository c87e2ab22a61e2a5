package hooks

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stackvity/json-mirror/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Implementations ---

type MockTUIProgram struct {
	mock.Mock
}

// Send mocks the Send method.
func (m *MockTUIProgram) Send(msg interface{}) {
	m.Called(msg)
}

type MockProgressBar struct {
	mock.Mock
}

// SetTotal mocks the SetTotal method.
func (m *MockProgressBar) SetTotal(total int) error {
	args := m.Called(total)
	return args.Error(0)
}

// Add mocks the Add method.
func (m *MockProgressBar) Add(num int) error {
	args := m.Called(num)
	return args.Error(0)
}

// Describe mocks the Describe method.
func (m *MockProgressBar) Describe(description string) error {
	args := m.Called(description)
	return args.Error(0)
}

// Close mocks the Close method.
func (m *MockProgressBar) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newJSONLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})), buf
}

// --- Test Suite ---

func TestCLIHooks_OnRunStart(t *testing.T) {
	t.Run("TUI Enabled", func(t *testing.T) {
		mockTUI := new(MockTUIProgram)
		mockTUI.On("Send", RunStartMsg{Total: 7}).Once()
		mockProgress := new(MockProgressBar)

		logger, _ := newJSONLogger(slog.LevelDebug)
		hooks := NewCLIHooks(logger, true, false, mockTUI, mockProgress)
		require.NoError(t, hooks.OnRunStart(7))

		mockTUI.AssertExpectations(t)
		mockProgress.AssertNotCalled(t, "SetTotal", mock.Anything)
	})

	t.Run("Progress Bar", func(t *testing.T) {
		mockTUI := new(MockTUIProgram)
		mockProgress := new(MockProgressBar)
		mockProgress.On("SetTotal", 7).Return(nil).Once()

		logger, _ := newJSONLogger(slog.LevelDebug)
		hooks := NewCLIHooks(logger, false, false, mockTUI, mockProgress)
		require.NoError(t, hooks.OnRunStart(7))

		mockProgress.AssertExpectations(t)
		mockTUI.AssertNotCalled(t, "Send", mock.Anything)
	})
}

func TestCLIHooks_OnFileStatusUpdate(t *testing.T) {
	testPath := "/in/photo.png"
	testDuration := 50 * time.Millisecond

	t.Run("TUI Enabled", func(t *testing.T) {
		mockTUI := new(MockTUIProgram)
		mockTUI.On("Send", mock.MatchedBy(func(msg FileStatusUpdateMsg) bool {
			return msg.Path == testPath &&
				msg.Status == converter.StatusFailed &&
				msg.Message == "bad bytes" &&
				msg.Duration == testDuration
		})).Once()

		logger, logBuf := newJSONLogger(slog.LevelDebug)
		hooks := NewCLIHooks(logger, true, false, mockTUI, nil)
		require.NoError(t, hooks.OnFileStatusUpdate(testPath, converter.StatusFailed, "bad bytes", testDuration))

		mockTUI.AssertExpectations(t)
		assert.Empty(t, logBuf.String())
	})

	t.Run("Verbose Enabled", func(t *testing.T) {
		mockTUI := new(MockTUIProgram)
		logger, logBuf := newJSONLogger(slog.LevelDebug)
		hooks := NewCLIHooks(logger, false, true, mockTUI, nil)

		require.NoError(t, hooks.OnFileStatusUpdate(testPath, converter.StatusSkipped, converter.SkipReasonCancelled, testDuration))
		out := logBuf.String()
		assert.Contains(t, out, `"level":"DEBUG"`)
		assert.Contains(t, out, `"msg":"File status updated"`)
		assert.Contains(t, out, `"path":"`+testPath+`"`)
		assert.Contains(t, out, `"status":"skipped"`)
		assert.Contains(t, out, `"message":"cancelled"`)
		assert.Contains(t, out, `"duration":`)

		logBuf.Reset()
		require.NoError(t, hooks.OnFileStatusUpdate(testPath, converter.StatusFailed, "boom", 0))
		assert.Empty(t, logBuf.String(), "failures are logged by the engine")
		mockTUI.AssertNotCalled(t, "Send", mock.Anything)
	})

	t.Run("Progress Bar Counts Final States", func(t *testing.T) {
		mockProgress := new(MockProgressBar)
		mockProgress.On("Add", 1).Return(nil).Times(3)

		logger, logBuf := newJSONLogger(slog.LevelInfo)
		hooks := NewCLIHooks(logger, false, false, nil, mockProgress)

		require.NoError(t, hooks.OnFileStatusUpdate(testPath, converter.StatusProcessing, "", 0))
		require.NoError(t, hooks.OnFileStatusUpdate(testPath, converter.StatusSuccess, "", testDuration))
		require.NoError(t, hooks.OnFileStatusUpdate(testPath, converter.StatusFailed, "boom", testDuration))
		require.NoError(t, hooks.OnFileStatusUpdate(testPath, converter.StatusSkipped, "cancelled", 0))

		mockProgress.AssertExpectations(t)
		assert.Empty(t, logBuf.String())
	})
}

func TestCLIHooks_OnRunComplete(t *testing.T) {
	report := converter.Report{Summary: converter.ReportSummary{ConvertedCount: 3, ErrorCount: 1}}

	t.Run("TUI Enabled", func(t *testing.T) {
		mockTUI := new(MockTUIProgram)
		mockTUI.On("Send", RunCompleteMsg{Report: report}).Once()
		mockProgress := new(MockProgressBar)

		logger, _ := newJSONLogger(slog.LevelDebug)
		hooks := NewCLIHooks(logger, true, false, mockTUI, mockProgress)
		require.NoError(t, hooks.OnRunComplete(report))

		mockTUI.AssertExpectations(t)
		mockProgress.AssertNotCalled(t, "Close")
	})

	t.Run("Progress Bar", func(t *testing.T) {
		mockProgress := new(MockProgressBar)
		mockProgress.On("Describe", "converted 3, failed 1").Return(nil).Once()
		mockProgress.On("Close").Return(nil).Once()

		logger, _ := newJSONLogger(slog.LevelDebug)
		hooks := NewCLIHooks(logger, false, false, nil, mockProgress)
		require.NoError(t, hooks.OnRunComplete(report))
		mockProgress.AssertExpectations(t)
	})
}

func TestNewCLIHooks_NilDependencies(t *testing.T) {
	logger, _ := newJSONLogger(slog.LevelInfo)
	hooks := NewCLIHooks(logger, false, false, nil, nil)
	assert.NotPanics(t, func() {
		_ = hooks.OnRunStart(1)
		_ = hooks.OnFileStatusUpdate("a", converter.StatusSuccess, "", 0)
		_ = hooks.OnRunComplete(converter.Report{})
	})
}

func TestLogProgress(t *testing.T) {
	logger, logBuf := newJSONLogger(slog.LevelInfo)
	p := NewLogProgress(logger, 4)

	require.NoError(t, p.SetTotal(8))
	for i := 0; i < 8; i++ {
		require.NoError(t, p.Add(1))
	}
	out := logBuf.String()
	assert.Equal(t, 4, strings.Count(out, `"msg":"Conversion progress"`), "one line per quarter")
	assert.Contains(t, out, `"percent":25`)
	assert.Contains(t, out, `"percent":100`)

	logBuf.Reset()
	require.NoError(t, p.Describe("done"))
	require.NoError(t, p.Close())
	assert.Empty(t, logBuf.String(), "the summary line is debug level")
}

func TestLogProgress_ZeroTotal(t *testing.T) {
	logger, logBuf := newJSONLogger(slog.LevelInfo)
	p := NewLogProgress(logger, 0)
	require.NoError(t, p.SetTotal(0))
	require.NoError(t, p.Add(1))
	assert.Empty(t, logBuf.String())
}
