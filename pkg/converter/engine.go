package converter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine runs conversions for a list of files on a fixed-size worker pool.
// Per-file failures are logged and recorded; they never stop sibling tasks.
type Engine struct {
	opts      *Options
	logger    *slog.Logger
	converter Converter
	hooks     Hooks
}

// taskResult carries one status event from a worker to the aggregator.
type taskResult struct {
	path     string
	status   Status
	info     FileInfo
	err      error
	duration time.Duration
}

// NewEngine validates opts, fills defaults, and builds the default FileConverter
// unless one was injected.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))

	conv := opts.Converter
	if conv == nil {
		fc, err := newFileConverterFromOptions(&opts)
		if err != nil {
			return nil, err
		}
		conv = fc
		logger.Debug("Converter not provided, using default FileConverter.", slog.String("encoding", opts.Encoding))
	}

	return &Engine{
		opts:      &opts,
		logger:    logger,
		converter: conv,
		hooks:     opts.EventHooks,
	}, nil
}

// Options returns the validated options the engine runs with.
func (e *Engine) Options() Options { return *e.opts }

// Run discovers matching files under the input directory and dispatches them.
// The returned error is non-nil only for discovery failures (ErrInvalidInput)
// or cancellation before discovery completed.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	walker := NewWalker(e.opts.Filesystem, e.opts.InputPath, NewExtensionSet(e.opts.Extensions...), e.opts.Logger)
	paths, err := walker.Discover(ctx)
	if err != nil {
		e.logger.Error("Discovery failed", slog.String("path", e.opts.InputPath), slog.String("error", err.Error()))
		return Report{}, err
	}
	e.logger.Info("Found files", slog.Int("count", len(paths)))

	return e.Dispatch(ctx, paths), nil
}

// Dispatch converts every path and blocks until all dispatched tasks finished.
//
// Cancelling ctx stops handing out new paths; tasks already running complete
// normally and the remaining paths are reported as skipped.
func (e *Engine) Dispatch(ctx context.Context, paths []string) Report {
	startTime := time.Now()
	runID := uuid.NewString()
	workers := min(e.opts.Workers, len(paths))

	e.logger.Info("Starting conversion run",
		slog.String("runID", runID),
		slog.Int("files", len(paths)),
		slog.Int("workers", workers),
		slog.String("outputMode", e.opts.OutputMode.String()),
	)
	if hookErr := e.hooks.OnRunStart(len(paths)); hookErr != nil {
		e.logger.Warn("OnRunStart hook returned an error", slog.String("error", hookErr.Error()))
	}

	aggregator := newReportAggregator()
	taskChan := make(chan string, workers)
	resultsChan := make(chan taskResult, max(workers, 1)*2)
	var wg sync.WaitGroup

	e.startWorkers(&wg, workers, taskChan, resultsChan)

	aggregatorDone := make(chan struct{})
	go e.aggregateResults(resultsChan, aggregator, aggregatorDone)

	undispatched := e.feed(ctx, paths, taskChan)

	// Workers exit once taskChan is drained; only then is it safe to close resultsChan.
	wg.Wait()
	close(resultsChan)
	<-aggregatorDone

	if len(undispatched) > 0 {
		e.logger.Info("Conversion run cancelled", slog.Int("undispatched", len(undispatched)))
		for _, p := range undispatched {
			aggregator.addSkipped(SkippedInfo{Path: p, Reason: SkipReasonCancelled})
			e.notifyStatus(p, StatusSkipped, SkipReasonCancelled, 0)
		}
	}

	report := aggregator.getReport(e.opts, reportMeta{
		runID:     runID,
		total:     len(paths),
		workers:   workers,
		startTime: startTime,
		cancelled: len(undispatched) > 0,
	})

	e.logger.Info("Conversion run finished",
		slog.String("runID", runID),
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("converted", report.Summary.ConvertedCount),
		slog.Int("skipped", report.Summary.SkippedCount),
		slog.Int("errors", report.Summary.ErrorCount),
	)
	if hookErr := e.hooks.OnRunComplete(report); hookErr != nil {
		e.logger.Warn("OnRunComplete hook returned an error", slog.String("error", hookErr.Error()))
	}
	return report
}

// feed sends paths to the workers and closes taskChan. It returns the paths
// that were not sent because ctx was cancelled.
func (e *Engine) feed(ctx context.Context, paths []string, taskChan chan<- string) []string {
	defer close(taskChan)
	for i, p := range paths {
		if ctx.Err() != nil {
			return paths[i:]
		}
		select {
		case taskChan <- p:
		case <-ctx.Done():
			return paths[i:]
		}
	}
	return nil
}

// startWorkers launches the worker goroutines.
func (e *Engine) startWorkers(wg *sync.WaitGroup, count int, taskChan <-chan string, resultsChan chan<- taskResult) {
	e.logger.Debug("Starting worker pool", slog.Int("count", count))
	for i := 0; i < count; i++ {
		wg.Add(1)
		go e.worker(wg, i, taskChan, resultsChan)
	}
}

// worker converts paths until taskChan is closed.
func (e *Engine) worker(wg *sync.WaitGroup, workerID int, taskChan <-chan string, resultsChan chan<- taskResult) {
	defer wg.Done()
	wLogger := e.logger.With(slog.Int("workerID", workerID))
	wLogger.Debug("Worker started")

	for path := range taskChan {
		resultsChan <- taskResult{path: path, status: StatusProcessing}

		start := time.Now()
		info, err := e.convertSafely(path)
		res := taskResult{path: path, info: info, err: err, duration: time.Since(start), status: StatusSuccess}
		if err != nil {
			res.status = StatusFailed
		} else if res.info.Path == "" {
			res.info.Path = path
		}
		resultsChan <- res
	}
	wLogger.Debug("Worker shutting down (channel closed)")
}

// convertSafely runs the converter and turns a panic into an ErrWorkerPanic failure.
func (e *Engine) convertSafely(path string) (info FileInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %w: %v", ErrConversion, ErrWorkerPanic, r)
		}
	}()
	return e.converter.Convert(path, e.opts.OutputMode)
}

// aggregateResults records results and forwards them to the hooks. It is the
// only goroutine that calls hooks while workers are running.
func (e *Engine) aggregateResults(resultsChan <-chan taskResult, aggregator *reportAggregator, done chan<- struct{}) {
	defer close(done)
	for res := range resultsChan {
		switch res.status {
		case StatusProcessing:
			e.notifyStatus(res.path, StatusProcessing, "", 0)
			continue
		case StatusFailed:
			e.logger.Error("An error occurred in processing", slog.String("path", res.path), slog.String("error", res.err.Error()))
			aggregator.addError(ErrorInfo{Path: res.path, Error: res.err.Error()})
			e.notifyStatus(res.path, StatusFailed, res.err.Error(), res.duration)
		default:
			aggregator.addConverted(res.info)
			e.notifyStatus(res.path, StatusSuccess, "", res.duration)
		}
	}
}

func (e *Engine) notifyStatus(path string, status Status, message string, duration time.Duration) {
	if hookErr := e.hooks.OnFileStatusUpdate(path, status, message, duration); hookErr != nil {
		e.logger.Warn("OnFileStatusUpdate hook returned an error", slog.String("path", path), slog.String("error", hookErr.Error()))
	}
}

// --- reportAggregator ---

// reportAggregator manages the collection of results during the run.
type reportAggregator struct {
	mu        sync.Mutex
	converted []FileInfo
	skipped   []SkippedInfo
	errors    []ErrorInfo
}

type reportMeta struct {
	runID     string
	total     int
	workers   int
	startTime time.Time
	cancelled bool
}

func newReportAggregator() *reportAggregator {
	return &reportAggregator{
		converted: make([]FileInfo, 0, 256),
		skipped:   make([]SkippedInfo, 0),
		errors:    make([]ErrorInfo, 0),
	}
}

func (a *reportAggregator) addConverted(info FileInfo) {
	a.mu.Lock()
	a.converted = append(a.converted, info)
	a.mu.Unlock()
}

func (a *reportAggregator) addSkipped(info SkippedInfo) {
	a.mu.Lock()
	a.skipped = append(a.skipped, info)
	a.mu.Unlock()
}

func (a *reportAggregator) addError(info ErrorInfo) {
	a.mu.Lock()
	a.errors = append(a.errors, info)
	a.mu.Unlock()
}

// getReport compiles the final Report from copies of the collected slices.
func (a *reportAggregator) getReport(opts *Options, meta reportMeta) Report {
	a.mu.Lock()
	converted := make([]FileInfo, len(a.converted))
	copy(converted, a.converted)
	skipped := make([]SkippedInfo, len(a.skipped))
	copy(skipped, a.skipped)
	errorsList := make([]ErrorInfo, len(a.errors))
	copy(errorsList, a.errors)
	a.mu.Unlock()

	report := Report{
		Summary: ReportSummary{
			RunID:           meta.runID,
			InputPath:       opts.InputPath,
			OutputMode:      opts.OutputMode.String(),
			Extensions:      NewExtensionSet(opts.Extensions...).Sorted(),
			Workers:         meta.workers,
			TotalFiles:      meta.total,
			ConvertedCount:  len(converted),
			SkippedCount:    len(skipped),
			ErrorCount:      len(errorsList),
			Cancelled:       meta.cancelled,
			DurationSeconds: time.Since(meta.startTime).Seconds(),
			Timestamp:       time.Now().UTC(),
			SchemaVersion:   ReportSchemaVersion,
		},
		ConvertedFiles: converted,
		SkippedFiles:   skipped,
		Errors:         errorsList,
	}
	report.sortByPath()
	return report
}
