package rewritesink

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/base/btest"
	"github.com/relex/logcat-agent/util"
	"github.com/stretchr/testify/assert"
)

type testSinkConfig struct {
	bconfig.Header `yaml:",inline"`
	recorder       *btest.LogItemRecorder
}

func (cfg *testSinkConfig) VerifyConfig() error {
	return nil
}

func (cfg *testSinkConfig) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	return cfg.recorder, nil
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Hello", truncate("Hello", 3, "..."))
	assert.Equal(t, "Hel...", truncate("HelloWorld", 3, "..."))
	assert.Equal(t, "日...", truncate("日本語テキスト", 4, "...")) // cut inside the second rune
	assert.Equal(t, "...", truncate("日本語テキスト", 2, "..."))
}

func TestRewriteSink(t *testing.T) {
	mfactory := base.NewMetricFactory("testrewrite_", nil, nil, prometheus.NewRegistry())
	recorder := btest.NewLogItemRecorder("recorder")
	sink := NewSink("rewrite", recorder, []RuleConfig{
		{Op: OpRedactEmail},
		{Op: OpReplace, Field: FieldTag, Pattern: `^com\.example\.(\w+)$`, Replacement: "app.$1"},
		{Op: OpTruncate, MaxLength: 12, Suffix: "~"},
	}, mfactory)

	items := btest.NewTestItems("A", "B", "C")
	items[0].Message = "login user=foo@example.com ok"
	items[1].Tag = "com.example.main"
	original := append([]base.LogItem(nil), items...)

	assert.Nil(t, sink.AppendList(items))
	assert.Nil(t, sink.AppendList(items[2:]))
	assert.Nil(t, sink.OnFinish())
	assert.Equal(t, original, items, "input chunk is not modified")

	chunks := recorder.Chunks()
	if assert.Len(t, chunks, 2) {
		assert.Equal(t, "login user=R~", chunks[0][0].Message)
		assert.Equal(t, "app.main", chunks[0][1].Tag)
		assert.Equal(t, items[2], chunks[0][2])
		assert.Equal(t, items[2:], chunks[1])
	}
	assert.Equal(t, 1, recorder.NumFinish())

	counters := mfactory.AddOrGetCounterVec("rewrite_changed_items_total", "", []string{"sink", "rule"}, nil)
	assert.EqualValues(t, 3, util.SumMetricValues(counters))
}

func TestRewriteConfig(t *testing.T) {
	bconfig.RegisterConfigConstructors(bconfig.LogSinkConfigCreatorTable{
		"testRecorder": func() bconfig.LogSinkConfig { return &testSinkConfig{recorder: btest.NewLogItemRecorder("inner")} },
	})

	cfg := &Config{}
	err := util.UnmarshalYamlString(`
type: rewrite
rules:
  - op: redactEmail
    replacement: "<email>"
  - op: truncate
    field: tag
    maxLen: 4
sink:
  type: testRecorder
`, cfg)
	if !assert.Nil(t, err) {
		return
	}
	sink, serr := cfg.NewSink(logger.WithField("test", t.Name()), base.NewMetricFactory("testrewriteconfig_", nil, nil, prometheus.NewRegistry()))
	if !assert.Nil(t, serr) {
		return
	}
	items := btest.NewTestItems("A")
	items[0].Tag = "ActivityManager"
	items[0].Message = "mail to a@b.fi"
	assert.Nil(t, sink.AppendList(items))
	recorded := cfg.Sink.Value.(*testSinkConfig).recorder.Items()
	if assert.Len(t, recorded, 1) {
		assert.Equal(t, "Acti", recorded[0].Tag)
		assert.Equal(t, "mail to <email>", recorded[0].Message)
	}

	assert.EqualError(t, (&Config{}).VerifyConfig(), ".rules is empty")
	assert.EqualError(t, (&Config{Rules: []RuleConfig{{Op: "upper"}}}).VerifyConfig(), ".rules[0].op: unsupported op 'upper'")
	assert.EqualError(t, (&Config{Rules: []RuleConfig{{Op: OpTruncate}}}).VerifyConfig(), ".rules[0].maxLen must be larger than zero: 0")
	assert.ErrorContains(t, (&Config{Rules: []RuleConfig{{Op: OpReplace, Pattern: "("}}}).VerifyConfig(), ".rules[0].pattern: ")
	assert.EqualError(t, (&Config{Rules: []RuleConfig{{Op: OpRedactEmail, Field: "pid"}}}).VerifyConfig(), ".rules[0].field: unsupported field 'pid'")
	assert.EqualError(t, (&Config{Rules: []RuleConfig{{Op: OpRedactEmail}}}).VerifyConfig(), ".sink is undefined")
}
