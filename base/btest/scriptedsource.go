package btest

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/relex/logcat-agent/base"
)

// ErrStreamClosed is returned from a closed scripted stream
var ErrStreamClosed = errors.New("scripted stream closed")

// ScriptedSource is a LogSource producing pre-defined items, to be parsed by ScriptedParser only
//
// After all items, the parser returns FinalErr (io.EOF if nil), or blocks until closed if Block is set
type ScriptedSource struct {
	Items    []base.LogItem
	FinalErr error
	Block    bool
	OpenErr  error

	// Gate, if set, must receive one token for each item to be produced
	Gate chan struct{}

	lock        sync.Mutex
	streams     []*scriptedStream
	numProduced int32
}

type scriptedStream struct {
	source    *ScriptedSource
	next      int
	closed    chan struct{}
	closeOnce sync.Once
}

type scriptedParser struct {
	stream *scriptedStream
}

// Open creates a new stream from the beginning of Items
func (source *ScriptedSource) Open() (io.ReadCloser, error) {
	if source.OpenErr != nil {
		return nil, source.OpenErr
	}
	stream := &scriptedStream{
		source: source,
		closed: make(chan struct{}),
	}
	source.lock.Lock()
	source.streams = append(source.streams, stream)
	source.lock.Unlock()
	return stream, nil
}

func (source *ScriptedSource) String() string {
	return "scripted"
}

// NumOpened returns how many streams have been opened
func (source *ScriptedSource) NumOpened() int {
	source.lock.Lock()
	defer source.lock.Unlock()
	return len(source.streams)
}

// NumProduced returns how many items have been returned by parsers of all streams
func (source *ScriptedSource) NumProduced() int {
	return int(atomic.LoadInt32(&source.numProduced))
}

// AllClosed checks whether all opened streams have been closed
func (source *ScriptedSource) AllClosed() bool {
	source.lock.Lock()
	defer source.lock.Unlock()
	for _, s := range source.streams {
		select {
		case <-s.closed:
		default:
			return false
		}
	}
	return true
}

// ScriptedParser is the LogParserFactory for streams from ScriptedSource
func ScriptedParser(stream io.Reader) base.LogParser {
	return &scriptedParser{stream: stream.(*scriptedStream)}
}

func (stream *scriptedStream) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (stream *scriptedStream) Close() error {
	stream.closeOnce.Do(func() {
		close(stream.closed)
	})
	return nil
}

func (parser *scriptedParser) Next() (base.LogItem, error) {
	stream := parser.stream
	source := stream.source

	select {
	case <-stream.closed:
		return base.LogItem{}, ErrStreamClosed
	default:
	}

	if stream.next < len(source.Items) {
		if source.Gate != nil {
			select {
			case <-source.Gate:
			case <-stream.closed:
				return base.LogItem{}, ErrStreamClosed
			}
		}
		item := source.Items[stream.next]
		stream.next++
		atomic.AddInt32(&source.numProduced, 1)
		return item, nil
	}

	if source.Block {
		<-stream.closed
		return base.LogItem{}, ErrStreamClosed
	}
	if source.FinalErr != nil {
		return base.LogItem{}, source.FinalErr
	}
	return base.LogItem{}, io.EOF
}
