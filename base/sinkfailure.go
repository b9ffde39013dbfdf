package base

import (
	"errors"
	"fmt"
)

// SinkOperation is the name of sink method where a failure happens
type SinkOperation string

// Sink operations
const (
	SinkOpAppendList SinkOperation = "appendList"
	SinkOpOnFinish   SinkOperation = "onFinish"
)

// ErrSinkPanic is wrapped in SinkFailure.Err when a sink panics instead of returning error
var ErrSinkPanic = errors.New("sink panicked")

// SinkFailure describes one failed call to a sink
type SinkFailure struct {
	Sink      LogSink
	SinkName  string
	Operation SinkOperation
	NumItems  int // length of the chunk for appendList
	Err       error
}

func (failure SinkFailure) Error() string {
	return fmt.Sprintf("sink %s failed in %s: %s", failure.SinkName, failure.Operation, failure.Err.Error())
}

func (failure SinkFailure) Unwrap() error {
	return failure.Err
}
