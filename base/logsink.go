package base

import (
	"fmt"
)

// LogSink receives chunks of log items from a reader
//
// Within one run, AppendList and OnFinish are called from the same goroutine, in order, and never concurrently
type LogSink interface {
	// AppendList receives a non-empty chunk of items in source order
	//
	// The chunk is shared with other sinks: it may be retained but must not be modified
	AppendList(items []LogItem) error

	// OnFinish tells no more chunk will arrive in this run. It's called exactly once per run.
	OnFinish() error
}

// NamedSink is an optional interface of LogSink to provide a name for logging and metrics
type NamedSink interface {
	LogSink
	Name() string
}

// SinkBase provides no-op implementation of LogSink to be embedded
type SinkBase struct{}

// AppendList does nothing
func (SinkBase) AppendList(items []LogItem) error {
	return nil
}

// OnFinish does nothing
func (SinkBase) OnFinish() error {
	return nil
}

// SinkFunc turns a function into LogSink with no-op OnFinish
type SinkFunc func(items []LogItem) error

// AppendList calls the function
func (f SinkFunc) AppendList(items []LogItem) error {
	return f(items)
}

// OnFinish does nothing
func (f SinkFunc) OnFinish() error {
	return nil
}

// SinkName returns the name of NamedSink, or "#index type" for others
func SinkName(sink LogSink, index int) string {
	if named, ok := sink.(NamedSink); ok {
		return named.Name()
	}
	return fmt.Sprintf("#%d %T", index, sink)
}
