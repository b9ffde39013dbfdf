// Package reader drives one log source into multiple sinks in ordered chunks
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/util"
	"golang.org/x/exp/slices"
)

// ErrReaderNotIdle is returned when sinks are changed or a run is started after the reader has started
var ErrReaderNotIdle = errors.New("reader is not idle")

// RunResult summarizes a finished run
type RunResult struct {
	Cause     TerminationCause
	Err       error // nil for CauseExhausted
	NumItems  int
	NumChunks int
	Failures  []base.SinkFailure
}

// Reader reads items from a LogSource and delivers them in chunks to registered sinks
//
// A Reader runs only once: Idle -> Running -> Finishing -> Terminal
type Reader struct {
	logger  logger.Logger
	source  base.LogSource
	parse   base.LogParserFactory
	config  Config
	state   int32
	stopped *channels.SignalAwaitable

	sinkLock sync.Mutex
	sinks    []base.LogSink
	result   RunResult

	metricFactory *base.MetricFactory
	itemsCounter  prometheus.Counter
	chunksCounter prometheus.Counter
	runsCounter   *prometheus.CounterVec
}

// New creates an idle Reader
func New(parentLogger logger.Logger, source base.LogSource, parse base.LogParserFactory, config Config, metricFactory *base.MetricFactory) *Reader {
	return &Reader{
		logger:        parentLogger.WithFields(logger.Fields{defs.LabelComponent: "Reader", defs.LabelSource: source.String()}),
		source:        source,
		parse:         parse,
		config:        config.withDefaults(),
		state:         int32(StateIdle),
		stopped:       channels.NewSignalAwaitable(),
		metricFactory: metricFactory,
		itemsCounter:  metricFactory.AddOrGetCounter("items_total", "Numbers of items read from source", nil, nil),
		chunksCounter: metricFactory.AddOrGetCounter("chunks_total", "Numbers of chunks delivered to sinks", nil, nil),
		runsCounter:   metricFactory.AddOrGetCounterVec("runs_total", "Numbers of finished runs by termination cause", []string{"cause"}, nil),
	}
}

// AddSink registers a sink at the end of delivery order
func (reader *Reader) AddSink(sink base.LogSink) error {
	reader.sinkLock.Lock()
	defer reader.sinkLock.Unlock()
	if reader.State() != StateIdle {
		return ErrReaderNotIdle
	}
	reader.sinks = append(reader.sinks, sink)
	return nil
}

// RemoveSink unregisters the first registration of the given sink, returns false if not found
//
// Sinks of func or other uncomparable types are never found; a SinkFunc must be registered by pointer to be removed.
func (reader *Reader) RemoveSink(sink base.LogSink) (bool, error) {
	reader.sinkLock.Lock()
	defer reader.sinkLock.Unlock()
	if reader.State() != StateIdle {
		return false, ErrReaderNotIdle
	}
	index := slices.IndexFunc(reader.sinks, func(s base.LogSink) bool { return sameSink(s, sink) })
	if index == -1 {
		return false, nil
	}
	reader.sinks = slices.Delete(reader.sinks, index, index+1)
	return true, nil
}

// Sinks returns a copy of registered sinks
func (reader *Reader) Sinks() []base.LogSink {
	reader.sinkLock.Lock()
	defer reader.sinkLock.Unlock()
	return slices.Clone(reader.sinks)
}

// State returns the current state
func (reader *Reader) State() State {
	return State(atomic.LoadInt32(&reader.state))
}

// Stopped returns an Awaitable which is signaled when the run reaches Terminal
func (reader *Reader) Stopped() channels.Awaitable {
	return reader.stopped
}

// Result returns the result of finished run. It's only valid after Stopped.
func (reader *Reader) Result() RunResult {
	reader.sinkLock.Lock()
	defer reader.sinkLock.Unlock()
	return reader.result
}

// Launch starts the run in background
func (reader *Reader) Launch(ctx context.Context) {
	go func() {
		if _, err := reader.Run(ctx); err != nil {
			reader.logger.Error("failed to launch: ", err)
		}
	}()
}

// Run reads the source until end of data, read error or cancellation of ctx, and returns after all sinks are finished
//
// The returned error is only for misuse, i.e. ErrReaderNotIdle; errors of the run itself are in RunResult
func (reader *Reader) Run(ctx context.Context) (RunResult, error) {
	reader.sinkLock.Lock()
	if !atomic.CompareAndSwapInt32(&reader.state, int32(StateIdle), int32(StateRunning)) {
		reader.sinkLock.Unlock()
		return RunResult{}, ErrReaderNotIdle
	}
	sinks := slices.Clone(reader.sinks)
	reader.sinkLock.Unlock()

	reader.logger.Infof("start run with %d sinks, batchMaxItems=%d flushInterval=%s",
		len(sinks), reader.config.BatchMaxItems, reader.config.FlushInterval)

	dispatcher := newSinkDispatcher(reader.logger, sinks, reader.metricFactory, reader.config.OnSinkFailure)
	result := reader.runMain(ctx, dispatcher)
	result.Failures = dispatcher.Failures()

	reader.sinkLock.Lock()
	reader.result = result
	reader.sinkLock.Unlock()

	reader.runsCounter.WithLabelValues(result.Cause.String()).Inc()
	if result.Err != nil {
		reader.logger.Infof("end run: cause=%s items=%d chunks=%d sinkFailures=%d err=%s",
			result.Cause, result.NumItems, result.NumChunks, len(result.Failures), result.Err.Error())
	} else {
		reader.logger.Infof("end run: cause=%s items=%d chunks=%d sinkFailures=%d",
			result.Cause, result.NumItems, result.NumChunks, len(result.Failures))
	}

	atomic.StoreInt32(&reader.state, int32(StateTerminal))
	reader.stopped.Signal()
	return result, nil
}

func (reader *Reader) runMain(ctx context.Context, dispatcher *sinkDispatcher) RunResult {
	result := RunResult{}

	stream, oerr := reader.source.Open()
	if oerr != nil {
		result.Cause = CauseReadError
		result.Err = fmt.Errorf("failed to open %s: %w", reader.source.String(), oerr)
		reader.enterFinishing()
		dispatcher.Finish()
		return result
	}

	itemChan := make(chan base.LogItem)
	pendingChan := make(chan base.LogItem, 1)
	endChan := make(chan error, 1)
	stopRead := make(chan struct{})
	readExited := channels.NewSignalAwaitable()
	go reader.readMain(reader.parse(stream), itemChan, pendingChan, endChan, stopRead, readExited)

	maxItems := reader.config.BatchMaxItems
	batch := make([]base.LogItem, 0, maxItems)
	flushTimer := time.NewTimer(reader.config.FlushInterval)
	util.StopTimer(flushTimer)
	var flushTimeout <-chan time.Time // nil while batch is empty

	flush := func() {
		if len(batch) == 0 {
			return
		}
		chunk := batch
		batch = make([]base.LogItem, 0, maxItems) // sinks may retain delivered chunks
		util.StopTimer(flushTimer)
		flushTimeout = nil
		result.NumChunks++
		reader.chunksCounter.Inc()
		dispatcher.AppendList(chunk)
	}

	accept := func(item base.LogItem) {
		batch = append(batch, item)
		result.NumItems++
		reader.itemsCounter.Inc()
		if len(batch) == 1 {
			flushTimer.Reset(reader.config.FlushInterval)
			flushTimeout = flushTimer.C
		}
		if len(batch) >= maxItems {
			flush()
		}
	}

	readStopped := false
	stopReading := func() {
		readStopped = true
		close(stopRead)
		if err := stream.Close(); err != nil {
			reader.logger.Warn("error closing source: ", err)
		}
		if !readExited.Wait(defs.ReaderStopTimeout) {
			reader.logger.Errorf("BUG: source read didn't stop in %s after close", defs.ReaderStopTimeout)
		}
	}

SELECT_LOOP:
	for {
		select {
		case item := <-itemChan:
			accept(item)
		case <-flushTimeout:
			flushTimeout = nil
			flush()
		case err := <-endChan:
			if errors.Is(err, io.EOF) {
				result.Cause = CauseExhausted
				reader.logger.Info("end of data")
			} else {
				result.Cause = CauseReadError
				result.Err = fmt.Errorf("failed to read %s: %w", reader.source.String(), err)
				reader.logger.Warn("read error: ", err)
			}
			break SELECT_LOOP
		case <-ctx.Done():
			result.Cause = CauseCancelled
			result.Err = ctx.Err()
			reader.logger.Info("cancelled")
			break SELECT_LOOP
		}
	}

	reader.enterFinishing()
	if result.Cause == CauseCancelled {
		// interrupt blocked reads first; the item parsed but not yet handed over goes into the last chunk
		stopReading()
		select {
		case item := <-pendingChan:
			accept(item)
		default:
		}
	}
	flush()
	flushTimer.Stop()
	dispatcher.Finish()

	if !readStopped {
		stopReading()
	}
	return result
}

// readMain reads items in background and hands them over one by one
//
// On stop, an item already parsed is put into pendingChan instead of being lost
func (reader *Reader) readMain(parser base.LogParser, itemChan chan<- base.LogItem, pendingChan chan<- base.LogItem,
	endChan chan<- error, stopRead <-chan struct{}, exited *channels.SignalAwaitable) {

	defer exited.Signal()
	defer func() {
		if r := recover(); r != nil {
			reader.logger.Errorf("parser panicked: %v. stack=%s", r, util.Stack())
			endChan <- fmt.Errorf("parser panicked: %v", r)
		}
	}()

	for {
		select {
		case <-stopRead:
			return
		default:
		}
		item, err := parser.Next()
		if err != nil {
			endChan <- err
			return
		}
		select {
		case itemChan <- item:
		case <-stopRead:
			pendingChan <- item
			return
		}
	}
}

func (reader *Reader) enterFinishing() {
	atomic.StoreInt32(&reader.state, int32(StateFinishing))
}

// sameSink compares registrations without panicking on uncomparable types
//
// Funcs never match, because closures of the same literal can't be told apart. Register *SinkFunc to make it removable.
func sameSink(a base.LogSink, b base.LogSink) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Kind() == reflect.Func || !ta.Comparable() {
		return false
	}
	return a == b
}
