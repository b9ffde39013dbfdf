package datadog

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/defs"
)

// requestMaxItems is the max amount of log entries in one request
// See the api docs here: https://docs.datadoghq.com/api/latest/logs/#send-logs
const requestMaxItems = 1000

// Sink posts chunks as gzip'ed JSON arrays, split into requests of at most 1000 items
type Sink struct {
	logger      logger.Logger
	name        string
	upstream    UpstreamConfig
	serializer  eventSerializer
	client      *http.Client
	bodyBuffer  *bytes.Buffer
	gzipWriter  *gzip.Writer
	sentItems   prometheus.Counter
	sentBytes   prometheus.Counter
	failedPosts prometheus.Counter
}

// NewSink creates a Datadog sink
func NewSink(parentLogger logger.Logger, name string, serialization SerializationConfig, upstream UpstreamConfig,
	metricFactory *base.MetricFactory) (*Sink, error) {

	if _, err := http.NewRequest(http.MethodPost, upstream.Address, nil); err != nil {
		return nil, fmt.Errorf("invalid upstream address: %w", err)
	}
	bodyBuffer := &bytes.Buffer{}
	sinkFactory := metricFactory.NewSubFactory("datadog_", []string{defs.LabelSink}, []string{name})
	return &Sink{
		logger: parentLogger.WithFields(logger.Fields{
			defs.LabelComponent: "DatadogSink",
			defs.LabelSink:      name,
		}),
		name:        name,
		upstream:    upstream,
		serializer:  eventSerializer{config: serialization},
		client:      &http.Client{Timeout: upstream.HTTPTimeout},
		bodyBuffer:  bodyBuffer,
		gzipWriter:  gzip.NewWriter(bodyBuffer),
		sentItems:   sinkFactory.AddOrGetCounter("sent_items_total", "Numbers of items accepted by upstream", nil, nil),
		sentBytes:   sinkFactory.AddOrGetCounter("sent_bytes_total", "Numbers of compressed bytes accepted by upstream", nil, nil),
		failedPosts: sinkFactory.AddOrGetCounter("failed_requests_total", "Numbers of failed requests", nil, nil),
	}, nil
}

// Name returns the sink name
func (sink *Sink) Name() string {
	return sink.name
}

// AppendList posts the items
func (sink *Sink) AppendList(items []base.LogItem) error {
	for start := 0; start < len(items); start += requestMaxItems {
		end := start + requestMaxItems
		if end > len(items) {
			end = len(items)
		}
		if err := sink.post(items[start:end]); err != nil {
			sink.failedPosts.Inc()
			return err
		}
	}
	return nil
}

// OnFinish does nothing, as each chunk is sent immediately
func (sink *Sink) OnFinish() error {
	return nil
}

func (sink *Sink) post(items []base.LogItem) error {
	body, berr := sink.buildBody(items)
	if berr != nil {
		return berr
	}

	request, rerr := http.NewRequest(http.MethodPost, sink.upstream.Address, bytes.NewReader(body))
	if rerr != nil {
		return rerr
	}
	request.Header.Add("Content-Encoding", "gzip")
	request.Header.Add("Content-Type", "application/json")
	request.Header.Add("DD-API-KEY", sink.upstream.APIKey)

	resp, err := sink.client.Do(request)
	if err != nil {
		return fmt.Errorf("send chunk error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("couldn't read response body: %w", err)
		}
		return fmt.Errorf("got a status %d with body %s", resp.StatusCode, respBody)
	}
	sink.sentItems.Add(float64(len(items)))
	sink.sentBytes.Add(float64(len(body)))
	return nil
}

func (sink *Sink) buildBody(items []base.LogItem) ([]byte, error) {
	sink.bodyBuffer.Reset()
	sink.gzipWriter.Reset(sink.bodyBuffer)
	if _, err := sink.gzipWriter.Write([]byte("[")); err != nil {
		return nil, err
	}
	for i := range items {
		if i > 0 {
			if _, err := sink.gzipWriter.Write([]byte(",")); err != nil {
				return nil, err
			}
		}
		data, err := sink.serializer.SerializeItem(&items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to serialize item: %w", err)
		}
		if _, err := sink.gzipWriter.Write(data); err != nil {
			return nil, err
		}
	}
	if _, err := sink.gzipWriter.Write([]byte("]")); err != nil {
		return nil, err
	}
	if err := sink.gzipWriter.Close(); err != nil {
		return nil, err
	}
	return sink.bodyBuffer.Bytes(), nil
}
