package btest

import (
	"github.com/relex/logcat-agent/base"
)

// FailingSink is a LogItemRecorder which fails or panics after recording each call
type FailingSink struct {
	*LogItemRecorder
	AppendErr   error
	FinishErr   error
	PanicAppend bool
	PanicFinish bool
}

// NewFailingSink creates a FailingSink which returns the given errors
func NewFailingSink(name string, appendErr error, finishErr error) *FailingSink {
	return &FailingSink{
		LogItemRecorder: NewLogItemRecorder(name),
		AppendErr:       appendErr,
		FinishErr:       finishErr,
	}
}

// AppendList records the chunk and fails
func (sink *FailingSink) AppendList(items []base.LogItem) error {
	_ = sink.LogItemRecorder.AppendList(items)
	if sink.PanicAppend {
		panic("append exploded")
	}
	return sink.AppendErr
}

// OnFinish records the call and fails
func (sink *FailingSink) OnFinish() error {
	_ = sink.LogItemRecorder.OnFinish()
	if sink.PanicFinish {
		panic("finish exploded")
	}
	return sink.FinishErr
}
