// Package rewritesink provides a sink to rewrite item texts, e.g. to redact emails, before passing them to another sink
package rewritesink

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/defs"
	"golang.org/x/exp/slices"
)

// Config defines a rewrite sink in front of another sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Name           string                      `yaml:"name"`  // default "rewrite"
	Rules          []RuleConfig                `yaml:"rules"` // applied in order to each item
	Sink           bconfig.LogSinkConfigHolder `yaml:"sink"`
}

// Sink rewrites copies of items and forwards them to the inner sink
//
// Chunks are shared among sinks and never modified in place
type Sink struct {
	name     string
	inner    base.LogSink
	rules    []rule
	counters []prometheus.Counter // per rule
}

// VerifyConfig checks the rules and the inner sink
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Rules) == 0 {
		return fmt.Errorf(".rules is empty")
	}
	for i := range cfg.Rules {
		if err := cfg.Rules[i].VerifyConfig(); err != nil {
			return fmt.Errorf(".rules[%d]%w", i, err)
		}
	}
	if cfg.Sink.Value == nil {
		return fmt.Errorf(".sink is undefined")
	}
	if err := cfg.Sink.Value.VerifyConfig(); err != nil {
		return fmt.Errorf(".sink: %w", err)
	}
	return nil
}

// NewSink creates the inner sink and the rewriter in front of it
func (cfg *Config) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "rewrite"
	}
	inner, err := cfg.Sink.Value.NewSink(parentLogger.WithField(defs.LabelSink, name), metricFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to create inner sink: %w", err)
	}
	return NewSink(name, inner, cfg.Rules, metricFactory), nil
}

// NewSink creates a rewrite sink from verified rules
func NewSink(name string, inner base.LogSink, ruleConfigs []RuleConfig, metricFactory *base.MetricFactory) *Sink {
	counterVec := metricFactory.AddOrGetCounterVec("rewrite_changed_items_total", "Numbers of items changed by rewrite rules",
		[]string{defs.LabelSink, "rule"}, []string{name})
	sink := &Sink{
		name:     name,
		inner:    inner,
		rules:    make([]rule, 0, len(ruleConfigs)),
		counters: make([]prometheus.Counter, 0, len(ruleConfigs)),
	}
	for i := range ruleConfigs {
		sink.rules = append(sink.rules, ruleConfigs[i].newRule())
		sink.counters = append(sink.counters, counterVec.WithLabelValues(fmt.Sprintf("%d.%s", i, ruleConfigs[i].Op)))
	}
	return sink
}

// Name returns the sink name
func (sink *Sink) Name() string {
	return sink.name
}

// AppendList forwards the chunk, copied only if any item is changed
func (sink *Sink) AppendList(items []base.LogItem) error {
	var rewritten []base.LogItem
	for i := range items {
		item := items[i]
		changed := false
		for r, rl := range sink.rules {
			if rl.apply(&item) {
				sink.counters[r].Inc()
				changed = true
			}
		}
		if !changed {
			continue
		}
		if rewritten == nil {
			rewritten = slices.Clone(items)
		}
		rewritten[i] = item
	}
	if rewritten == nil {
		return sink.inner.AppendList(items)
	}
	return sink.inner.AppendList(rewritten)
}

// OnFinish is always forwarded
func (sink *Sink) OnFinish() error {
	return sink.inner.OnFinish()
}
