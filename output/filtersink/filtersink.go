// Package filtersink forwards selected log items to an inner sink
package filtersink

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/base/bmatch"
	"github.com/relex/logcat-agent/defs"
)

// Config defines a filter in front of another sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Name           string                      `yaml:"name"`     // default "filter"
	MinLevel       base.LogLevel               `yaml:"minLevel"` // default: all levels
	Match          bmatch.LogMatcherConfig     `yaml:"match"`    // items must match all conditions
	Exclude        bmatch.LogMatcherConfig     `yaml:"exclude"`  // items matching all conditions are dropped
	Sink           bconfig.LogSinkConfigHolder `yaml:"sink"`
}

// Filter selects items by level and field conditions
type Filter struct {
	MinLevel base.LogLevel
	Match    bmatch.LogMatcher
	Exclude  bmatch.LogMatcher
}

// Sink forwards matched items to the inner sink
type Sink struct {
	name           string
	inner          base.LogSink
	filter         Filter
	passedCounter  prometheus.Counter
	droppedCounter prometheus.Counter
}

// VerifyConfig checks the conditions and the inner sink
func (cfg *Config) VerifyConfig() error {
	if err := cfg.Match.VerifyConfig(); err != nil {
		return fmt.Errorf(".match: %w", err)
	}
	if err := cfg.Exclude.VerifyConfig(); err != nil {
		return fmt.Errorf(".exclude: %w", err)
	}
	if cfg.Sink.Value == nil {
		return fmt.Errorf(".sink is undefined")
	}
	if err := cfg.Sink.Value.VerifyConfig(); err != nil {
		return fmt.Errorf(".sink: %w", err)
	}
	return nil
}

// NewSink creates the inner sink and the filter in front of it
func (cfg *Config) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "filter"
	}
	inner, err := cfg.Sink.Value.NewSink(parentLogger.WithField(defs.LabelSink, name), metricFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to create inner sink: %w", err)
	}
	filter := Filter{
		MinLevel: cfg.MinLevel,
		Match:    cfg.Match.NewMatcher(),
		Exclude:  cfg.Exclude.NewMatcher(),
	}
	return NewSink(name, inner, filter, metricFactory), nil
}

// Accept checks whether the item passes the filter
func (filter *Filter) Accept(item *base.LogItem) bool {
	if item.Level < filter.MinLevel {
		return false
	}
	if !filter.Match.Match(item) {
		return false
	}
	if !filter.Exclude.Empty() && filter.Exclude.Match(item) {
		return false
	}
	return true
}

// NewSink creates a filter sink in front of the given sink
func NewSink(name string, inner base.LogSink, filter Filter, metricFactory *base.MetricFactory) *Sink {
	filterCounterVec := metricFactory.AddOrGetCounterVec("filter_items_total", "Numbers of items checked by filters",
		[]string{defs.LabelSink, "result"}, []string{name})
	return &Sink{
		name:           name,
		inner:          inner,
		filter:         filter,
		passedCounter:  filterCounterVec.WithLabelValues("passed"),
		droppedCounter: filterCounterVec.WithLabelValues("dropped"),
	}
}

// Name returns the sink name
func (sink *Sink) Name() string {
	return sink.name
}

// Inner returns the wrapped sink
func (sink *Sink) Inner() base.LogSink {
	return sink.inner
}

// AppendList forwards a new chunk of accepted items, or nothing if none is accepted
func (sink *Sink) AppendList(items []base.LogItem) error {
	accepted := make([]base.LogItem, 0, len(items))
	for i := range items {
		if sink.filter.Accept(&items[i]) {
			accepted = append(accepted, items[i])
		}
	}
	sink.passedCounter.Add(float64(len(accepted)))
	sink.droppedCounter.Add(float64(len(items) - len(accepted)))
	if len(accepted) == 0 {
		return nil
	}
	return sink.inner.AppendList(accepted)
}

// OnFinish is always forwarded
func (sink *Sink) OnFinish() error {
	return sink.inner.OnFinish()
}
