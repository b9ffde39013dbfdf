package btest

import (
	"sync"
	"time"

	"github.com/relex/gotils/channels"
	"github.com/relex/logcat-agent/base"
)

// Recorded sink calls in LogItemRecorder.Events
const (
	EventAppend = "append"
	EventFinish = "finish"
)

// LogItemRecorder is a LogSink to record all calls for testing purpose
type LogItemRecorder struct {
	name     string
	lock     sync.Mutex
	chunks   [][]base.LogItem
	events   []string
	finished *channels.SignalAwaitable
}

// NewLogItemRecorder creates a named LogItemRecorder
func NewLogItemRecorder(name string) *LogItemRecorder {
	return &LogItemRecorder{
		name:     name,
		finished: channels.NewSignalAwaitable(),
	}
}

// Name returns the name given in creation
func (recorder *LogItemRecorder) Name() string {
	return recorder.name
}

// AppendList records the chunk
func (recorder *LogItemRecorder) AppendList(items []base.LogItem) error {
	recorder.lock.Lock()
	defer recorder.lock.Unlock()
	recorder.chunks = append(recorder.chunks, items)
	recorder.events = append(recorder.events, EventAppend)
	return nil
}

// OnFinish records the call and signals Finished
func (recorder *LogItemRecorder) OnFinish() error {
	recorder.lock.Lock()
	recorder.events = append(recorder.events, EventFinish)
	recorder.lock.Unlock()
	recorder.finished.Signal()
	return nil
}

// Chunks returns all chunks received so far
func (recorder *LogItemRecorder) Chunks() [][]base.LogItem {
	recorder.lock.Lock()
	defer recorder.lock.Unlock()
	return append([][]base.LogItem(nil), recorder.chunks...)
}

// Items returns all items received so far, concatenated
func (recorder *LogItemRecorder) Items() []base.LogItem {
	recorder.lock.Lock()
	defer recorder.lock.Unlock()
	var all []base.LogItem
	for _, chunk := range recorder.chunks {
		all = append(all, chunk...)
	}
	return all
}

// Events returns the sequence of calls as EventAppend and EventFinish
func (recorder *LogItemRecorder) Events() []string {
	recorder.lock.Lock()
	defer recorder.lock.Unlock()
	return append([]string(nil), recorder.events...)
}

// NumFinish returns how many times OnFinish has been called
func (recorder *LogItemRecorder) NumFinish() int {
	num := 0
	for _, e := range recorder.Events() {
		if e == EventFinish {
			num++
		}
	}
	return num
}

// Finished is signaled at the first OnFinish
func (recorder *LogItemRecorder) Finished() channels.Awaitable {
	return recorder.finished
}

// WaitChunks waits until at least the given number of chunks are received or timeout
func (recorder *LogItemRecorder) WaitChunks(num int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		recorder.lock.Lock()
		received := len(recorder.chunks)
		recorder.lock.Unlock()
		if received >= num {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
