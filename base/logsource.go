package base

import (
	"io"
)

// LogSource opens the raw stream of a log producer, e.g. a file or a network connection
//
// Read errors of the stream other than io.EOF are treated as fatal by the reader. Close must unblock pending reads.
type LogSource interface {
	Open() (io.ReadCloser, error)
	String() string
}

// LogParser extracts log items from a raw stream one by one
//
// Next returns io.EOF exactly at the end of stream, or any other error if the stream is broken
type LogParser interface {
	Next() (LogItem, error)
}

// LogParserFactory creates a LogParser on an opened stream
type LogParserFactory func(stream io.Reader) LogParser
