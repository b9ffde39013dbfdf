package fluentdforward

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/defs"
)

// Sink forwards each chunk as one message and waits for its ACK
//
// The connection is opened on the first chunk and closed on finish or any error. The next chunk reconnects.
type Sink struct {
	logger         logger.Logger
	name           string
	upstream       UpstreamConfig
	encoder        *messageEncoder
	conn           *forwardConnection
	sentChunks     prometheus.Counter
	sentItems      prometheus.Counter
	sentBytes      prometheus.Counter
	networkErrors  prometheus.Counter
	numConnections prometheus.Counter
}

// NewSink creates a forwarding sink. Nothing is connected until the first chunk.
func NewSink(parentLogger logger.Logger, name string, tag string, mode forwardprotocol.MessageMode, upstream UpstreamConfig,
	metricFactory *base.MetricFactory) (*Sink, error) {

	encoder, err := newMessageEncoder(tag, mode)
	if err != nil {
		return nil, err
	}
	sinkFactory := metricFactory.NewSubFactory("forward_", []string{defs.LabelSink}, []string{name})
	return &Sink{
		logger: parentLogger.WithFields(logger.Fields{
			defs.LabelComponent: "FluentdForwardSink",
			defs.LabelSink:      name,
		}),
		name:           name,
		upstream:       upstream,
		encoder:        encoder,
		conn:           nil,
		sentChunks:     sinkFactory.AddOrGetCounter("sent_chunks_total", "Numbers of chunks sent and acknowledged", nil, nil),
		sentItems:      sinkFactory.AddOrGetCounter("sent_items_total", "Numbers of items sent and acknowledged", nil, nil),
		sentBytes:      sinkFactory.AddOrGetCounter("sent_bytes_total", "Numbers of message bytes sent and acknowledged", nil, nil),
		networkErrors:  sinkFactory.AddOrGetCounter("network_errors_total", "Numbers of failures to connect, send or receive ACK", nil, nil),
		numConnections: sinkFactory.AddOrGetCounter("connections_total", "Numbers of connections opened", nil, nil),
	}, nil
}

// Name returns the sink name
func (sink *Sink) Name() string {
	return sink.name
}

// AppendList sends the items as one message
func (sink *Sink) AppendList(items []base.LogItem) error {
	chunkID := newChunkID()
	message, eerr := sink.encoder.Encode(items, chunkID)
	if eerr != nil {
		return eerr
	}

	if sink.conn == nil {
		conn, err := openForwardConnection(sink.logger, sink.upstream)
		if err != nil {
			sink.networkErrors.Inc()
			return err
		}
		sink.numConnections.Inc()
		sink.conn = conn
	}

	if err := sink.conn.SendMessage(message, chunkID); err != nil {
		sink.networkErrors.Inc()
		sink.logger.Warnf("closing connection after failure of chunk %s: %s", chunkID, err.Error())
		sink.conn.Close()
		sink.conn = nil
		return fmt.Errorf("chunk %s: %w", chunkID, err)
	}
	sink.sentChunks.Inc()
	sink.sentItems.Add(float64(len(items)))
	sink.sentBytes.Add(float64(len(message)))
	return nil
}

// OnFinish closes the connection if any
func (sink *Sink) OnFinish() error {
	if sink.conn != nil {
		sink.conn.Close()
		sink.conn = nil
	}
	return nil
}
