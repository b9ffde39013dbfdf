package defs

import (
	"time"
)

var (
	// ReaderBatchMaxItems defines the maximum numbers of log items to accumulate in reader before flushing to sinks
	//
	// The value is used when reader config doesn't specify its own
	ReaderBatchMaxItems = 500

	// ReaderFlushInterval defines how long a partial batch may wait for more items after its first item arrived
	//
	// The value affects the delay of logs in sinks when the source is slow
	ReaderFlushInterval = 1 * time.Second

	// ReaderStopTimeout defines how long to wait for the background read to exit after the source stream is closed
	//
	// A source stream which doesn't unblock on Close is a bug; the reader logs and abandons the read goroutine
	ReaderStopTimeout = 10 * time.Second

	// ExportFileMaxBytes defines the default size after which an export file is rotated
	ExportFileMaxBytes = 64 * 1024 * 1024
)

var (
	// ForwarderConnectionTimeout is for establishing a TCP connection to upstream
	ForwarderConnectionTimeout = 60 * time.Second

	// ForwarderHandshakeTimeout is for shared-key handshake with upstream
	ForwarderHandshakeTimeout = ForwarderConnectionTimeout + ForwarderConnectionTimeout/2

	// ForwarderBatchSendTimeout is how long to wait at least for sending one chunk
	ForwarderBatchSendTimeout = ForwarderConnectionTimeout + ForwarderConnectionTimeout/2

	// ForwarderBatchAckTimeout is how long to wait for receiving one chunk ACK
	ForwarderBatchAckTimeout = ForwarderConnectionTimeout + 60*time.Second

	// SourceConnectionTimeout is for dialing network sources
	SourceConnectionTimeout = 30 * time.Second
)

// Read buffer sizes of TCP sources, tried from max and halved until min
const (
	SourceTCPReadBufferMax = 4 * 1024 * 1024
	SourceTCPReadBufferMin = 256 * 1024
)

// For testing and experiments
const (
	TestReadTimeout = 5 * time.Second
)

// EnableTestMode turns on test mode with very short timeout
func EnableTestMode() {
	ForwarderConnectionTimeout = 1 * time.Second
	ForwarderHandshakeTimeout = 2 * time.Second
	ForwarderBatchSendTimeout = 3 * time.Second
	ForwarderBatchAckTimeout = 3 * time.Second
	SourceConnectionTimeout = 1 * time.Second
	ReaderStopTimeout = 2 * time.Second
}
