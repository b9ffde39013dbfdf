package console

import (
	"bytes"
	"testing"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base/btest"
	"github.com/relex/logcat-agent/output/fluentdforward"
	"github.com/stretchr/testify/assert"
)

func TestConsoleSink(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewSink("out", buf, FormatText)
	items := btest.NewTestItems("A", "B")
	assert.Nil(t, sink.AppendList(items))
	assert.Nil(t, sink.OnFinish())
	assert.Equal(t, items[0].String()+"\n"+items[1].String()+"\n", buf.String())
	assert.Equal(t, "out", sink.Name())
}

func TestConsoleSinkJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewSink("out", buf, FormatJSON)
	items := btest.NewTestItems("A", "B")
	assert.Nil(t, sink.AppendList(items))
	assert.Nil(t, sink.OnFinish())

	expected := ""
	for _, item := range items {
		line, err := fluentdforward.FormatEventJSON(item, DefaultJSONTag, false)
		assert.Nil(t, err)
		assert.Contains(t, string(line), item.Message)
		expected += string(line) + "\n"
	}
	assert.Equal(t, expected, buf.String())
}

func TestConsoleConfig(t *testing.T) {
	assert.Nil(t, (&Config{Stream: "stderr", Format: FormatJSON}).VerifyConfig())
	assert.EqualError(t, (&Config{Stream: "null"}).VerifyConfig(), ".stream: unsupported stream 'null'")
	assert.EqualError(t, (&Config{Format: "xml"}).VerifyConfig(), ".format: unsupported format 'xml'")

	sink, err := (&Config{}).NewSink(logger.WithField("test", t.Name()), nil)
	assert.Nil(t, err)
	assert.Equal(t, "console", sink.(*Sink).Name())
}
