// Package statsink counts log items by level and tag
package statsink

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/defs"
	"golang.org/x/exp/slices"
)

const defaultTopTags = 10

// Config defines the statistics sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Name           string `yaml:"name"`    // default "stats"
	TopTags        int    `yaml:"topTags"` // number of tags in finish summary, default 10
}

// Stats is a snapshot of counters
type Stats struct {
	Total   int64
	ByLevel map[base.LogLevel]int64
	ByTag   map[string]int64
}

// TagCount is the number of items of a tag
type TagCount struct {
	Tag   string
	Count int64
}

// Sink counts items. Snapshot may be called from any goroutine.
type Sink struct {
	logger        logger.Logger
	name          string
	topTags       int
	total         *xsync.Counter
	levelCounters []*xsync.Counter
	tagCounters   *xsync.MapOf[*xsync.Counter]
	levelGauges   *prometheus.GaugeVec
	tagsGauge     prometheus.Gauge
}

// VerifyConfig checks nothing
func (cfg *Config) VerifyConfig() error {
	if cfg.TopTags < 0 {
		return fmt.Errorf(".topTags is negative: %d", cfg.TopTags)
	}
	return nil
}

// NewSink creates the statistics sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "stats"
	}
	topTags := cfg.TopTags
	if topTags == 0 {
		topTags = defaultTopTags
	}
	return NewSink(parentLogger, name, topTags, metricFactory), nil
}

// NewSink creates a statistics sink which logs the top N tags on finish
func NewSink(parentLogger logger.Logger, name string, topTags int, metricFactory *base.MetricFactory) *Sink {
	levelCounters := make([]*xsync.Counter, base.LevelFatal+1)
	for i := range levelCounters {
		levelCounters[i] = new(xsync.Counter)
	}
	return &Sink{
		logger: parentLogger.WithFields(logger.Fields{
			defs.LabelComponent: "StatSink",
			defs.LabelSink:      name,
		}),
		name:          name,
		topTags:       topTags,
		total:         new(xsync.Counter),
		levelCounters: levelCounters,
		tagCounters:   xsync.NewMapOf[*xsync.Counter](),
		levelGauges: metricFactory.AddOrGetGaugeVec("stats_items", "Numbers of items counted by level, updated on finish",
			[]string{defs.LabelSink, "level"}, []string{name}),
		tagsGauge: metricFactory.AddOrGetGauge("stats_tags", "Numbers of distinct tags, updated on finish",
			[]string{defs.LabelSink}, []string{name}),
	}
}

// Name returns the sink name
func (sink *Sink) Name() string {
	return sink.name
}

// AppendList counts the items
func (sink *Sink) AppendList(items []base.LogItem) error {
	for i := range items {
		item := &items[i]
		sink.total.Inc()
		sink.levelCounter(item.Level).Inc()
		counter, found := sink.tagCounters.Load(item.Tag)
		if !found {
			counter, _ = sink.tagCounters.LoadOrStore(item.Tag, new(xsync.Counter))
		}
		counter.Inc()
	}
	return nil
}

// OnFinish updates gauges and logs a summary
func (sink *Sink) OnFinish() error {
	stats := sink.Snapshot()
	for i := range sink.levelCounters {
		level := base.LogLevel(i)
		sink.levelGauges.WithLabelValues(level.String()).Set(float64(stats.ByLevel[level]))
	}
	sink.tagsGauge.Set(float64(len(stats.ByTag)))

	levelSummary := make([]string, 0, len(stats.ByLevel))
	for i := range sink.levelCounters {
		level := base.LogLevel(i)
		if n := stats.ByLevel[level]; n > 0 {
			levelSummary = append(levelSummary, fmt.Sprintf("%s=%d", level.String(), n))
		}
	}
	tagSummary := make([]string, 0, sink.topTags)
	for _, tc := range stats.TopTags(sink.topTags) {
		tagSummary = append(tagSummary, fmt.Sprintf("%s=%d", tc.Tag, tc.Count))
	}
	sink.logger.Infof("counted %d items of %d tags, levels: %s, top tags: %s", stats.Total, len(stats.ByTag),
		strings.Join(levelSummary, " "), strings.Join(tagSummary, " "))
	return nil
}

// Snapshot copies current counters
func (sink *Sink) Snapshot() Stats {
	stats := Stats{
		Total:   sink.total.Value(),
		ByLevel: make(map[base.LogLevel]int64, len(sink.levelCounters)),
		ByTag:   make(map[string]int64),
	}
	for i, counter := range sink.levelCounters {
		if n := counter.Value(); n > 0 {
			stats.ByLevel[base.LogLevel(i)] = n
		}
	}
	sink.tagCounters.Range(func(tag string, counter *xsync.Counter) bool {
		stats.ByTag[tag] = counter.Value()
		return true
	})
	return stats
}

func (sink *Sink) levelCounter(level base.LogLevel) *xsync.Counter {
	if int(level) >= len(sink.levelCounters) {
		return sink.levelCounters[base.LevelUnknown]
	}
	return sink.levelCounters[level]
}

// TopTags returns up to N tags with the most items, ordered by count and then tag
func (stats Stats) TopTags(n int) []TagCount {
	list := make([]TagCount, 0, len(stats.ByTag))
	for tag, count := range stats.ByTag {
		list = append(list, TagCount{tag, count})
	}
	slices.SortFunc(list, func(a, b TagCount) bool {
		if a.Count == b.Count {
			return a.Tag < b.Tag
		}
		return a.Count > b.Count
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
