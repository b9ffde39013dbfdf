package fluentdforward

import (
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/fluentlib/server"
	"github.com/relex/fluentlib/server/receivers"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/defs"
	"github.com/stretchr/testify/assert"
)

func TestForwardSink(t *testing.T) {
	recv, messageChan := receivers.NewMessageCollector(defs.TestReadTimeout)
	srv, srvAddr := server.LaunchServer(logger.WithField("test", t.Name()), server.Config{
		Address: "localhost:0",
		Secret:  "pass",
	}, recv)
	defer srv.Shutdown()

	items := newTestItems()
	for _, mode := range allMessageModes {
		mfactory := base.NewMetricFactory("testforward_", nil, nil, prometheus.NewRegistry())
		cfg := &Config{
			Tag:         "android.logcat",
			MessageMode: mode,
			Upstream:    UpstreamConfig{Address: srvAddr.String(), Secret: "pass"},
		}
		sink, err := cfg.NewSink(logger.WithField("test", t.Name()), mfactory)
		if !assert.Nil(t, err, mode) {
			continue
		}

		assert.Nil(t, sink.AppendList(items[0:2]), mode)
		assert.Nil(t, sink.AppendList(items[2:3]), mode)
		assert.Nil(t, sink.OnFinish(), mode)

		for _, chunk := range [][]base.LogItem{items[0:2], items[2:3]} {
			select {
			case message := <-messageChan:
				assert.Equal(t, "android.logcat", message.Tag, mode)
				assertEntries(t, chunk, message.Entries, string(mode))
			case <-time.After(defs.TestReadTimeout):
				assert.Fail(t, "timeout waiting for message", mode)
			}
		}

		metrics, _ := mfactory.DumpMetrics(false)
		assert.Contains(t, metrics, `testforward_forward_sent_chunks_total{sink="fluentdForward"} 2`, mode)
		assert.Contains(t, metrics, `testforward_forward_sent_items_total{sink="fluentdForward"} 3`, mode)
		assert.Contains(t, metrics, `testforward_forward_connections_total{sink="fluentdForward"} 1`, mode)
	}
}

func TestForwardSinkConnectionFailures(t *testing.T) {
	recv, _ := receivers.NewMessageCollector(defs.TestReadTimeout)
	srv, srvAddr := server.LaunchServer(logger.WithField("test", t.Name()), server.Config{
		Address: "localhost:0",
		Secret:  "real pass",
	}, recv)
	defer srv.Shutdown()

	mfactory := base.NewMetricFactory("testforward_", nil, nil, prometheus.NewRegistry())
	sink, err := NewSink(logger.WithField("test", t.Name()), "wrong", "android.logcat", forwardprotocol.ModeForward,
		UpstreamConfig{Address: srvAddr.String(), Secret: "wrong pass"}, mfactory)
	assert.Nil(t, err)
	assert.ErrorContains(t, sink.AppendList(newTestItems()), "failed to handshake")
	assert.Nil(t, sink.OnFinish())

	listener, lerr := net.Listen("tcp", "localhost:0")
	assert.Nil(t, lerr)
	closedAddr := listener.Addr().String()
	assert.Nil(t, listener.Close())

	sink, err = NewSink(logger.WithField("test", t.Name()), "closed", "android.logcat", forwardprotocol.ModeForward,
		UpstreamConfig{Address: closedAddr}, mfactory)
	assert.Nil(t, err)
	assert.ErrorContains(t, sink.AppendList(newTestItems()), "failed to connect:")
	assert.ErrorContains(t, sink.AppendList(newTestItems()), "failed to connect:")

	metrics, _ := mfactory.DumpMetrics(false)
	assert.Contains(t, metrics, `testforward_forward_network_errors_total{sink="wrong"} 1`)
	assert.Contains(t, metrics, `testforward_forward_network_errors_total{sink="closed"} 2`)
}

func TestForwardConfig(t *testing.T) {
	assert.EqualError(t, (&Config{}).VerifyConfig(), ".tag is unspecified")
	assert.EqualError(t, (&Config{Tag: "a", MessageMode: "Bogus"}).VerifyConfig(), ".messageMode: 'Bogus' is not a valid mode")
	assert.EqualError(t, (&Config{Tag: "a"}).VerifyConfig(), ".upstream.address is unspecified")
	assert.ErrorContains(t, (&Config{Tag: "a", Upstream: UpstreamConfig{Address: "localhost"}}).VerifyConfig(), ".upstream.address is invalid")
	assert.EqualError(t, (&Config{Tag: "a", Upstream: UpstreamConfig{Address: "localhost:24224", TLS: true}}).VerifyConfig(),
		".upstream.secret is unspecified when tls=true")
	assert.Nil(t, (&Config{Tag: "a", Upstream: UpstreamConfig{Address: "localhost:24224"}}).VerifyConfig())
}
