package reader

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/util"
)

// sinkDispatcher delivers chunks to all sinks one by one, isolating failures of each sink from the others
type sinkDispatcher struct {
	logger         logger.Logger
	sinks          []base.LogSink
	names          []string
	onFailure      func(base.SinkFailure)
	failures       []base.SinkFailure
	itemsCounter   *prometheus.CounterVec
	failureCounter *prometheus.CounterVec
	finishOnce     func() bool
}

func newSinkDispatcher(parentLogger logger.Logger, sinks []base.LogSink, metricFactory *base.MetricFactory, onFailure func(base.SinkFailure)) *sinkDispatcher {
	names := make([]string, len(sinks))
	for i, sink := range sinks {
		names[i] = base.SinkName(sink, i)
	}
	dispatcher := &sinkDispatcher{
		logger:    parentLogger,
		sinks:     sinks,
		names:     names,
		onFailure: onFailure,
		itemsCounter: metricFactory.AddOrGetCounterVec("sink_delivered_items_total", "Numbers of items delivered to sinks",
			[]string{"sink"}, nil),
		failureCounter: metricFactory.AddOrGetCounterVec("sink_failures_total", "Numbers of failed calls to sinks",
			[]string{"sink", "operation"}, nil),
	}
	dispatcher.finishOnce = util.NewRunOnce(dispatcher.finishAll)
	return dispatcher
}

// AppendList delivers a non-empty chunk to every sink in registration order
func (dispatcher *sinkDispatcher) AppendList(chunk []base.LogItem) {
	if len(chunk) == 0 {
		dispatcher.logger.Panicf("BUG: empty chunk. stack=%s", util.Stack())
	}
	for i, sink := range dispatcher.sinks {
		if dispatcher.call(i, base.SinkOpAppendList, len(chunk), func() error { return sink.AppendList(chunk) }) {
			dispatcher.itemsCounter.WithLabelValues(dispatcher.names[i]).Add(float64(len(chunk)))
		}
	}
}

// Finish calls OnFinish of every sink, at most once for the lifetime of dispatcher
func (dispatcher *sinkDispatcher) Finish() bool {
	return dispatcher.finishOnce()
}

// Failures returns all failures collected so far
func (dispatcher *sinkDispatcher) Failures() []base.SinkFailure {
	return dispatcher.failures
}

func (dispatcher *sinkDispatcher) finishAll() {
	for i, sink := range dispatcher.sinks {
		dispatcher.call(i, base.SinkOpOnFinish, 0, sink.OnFinish)
	}
}

// call invokes one sink method and returns true on success
func (dispatcher *sinkDispatcher) call(index int, op base.SinkOperation, numItems int, f func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			dispatcher.report(index, op, numItems, fmt.Errorf("%w: %v", base.ErrSinkPanic, r))
			ok = false
		}
	}()
	if err := f(); err != nil {
		dispatcher.report(index, op, numItems, err)
		return false
	}
	return true
}

func (dispatcher *sinkDispatcher) report(index int, op base.SinkOperation, numItems int, err error) {
	failure := base.SinkFailure{
		Sink:      dispatcher.sinks[index],
		SinkName:  dispatcher.names[index],
		Operation: op,
		NumItems:  numItems,
		Err:       err,
	}
	dispatcher.failures = append(dispatcher.failures, failure)
	dispatcher.failureCounter.WithLabelValues(failure.SinkName, string(op)).Inc()
	dispatcher.logger.Errorf("%s (items=%d)", failure.Error(), numItems)

	if dispatcher.onFailure != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					dispatcher.logger.Errorf("BUG: failure handler panicked: %v. stack=%s", r, util.Stack())
				}
			}()
			dispatcher.onFailure(failure)
		}()
	}
}
