package run

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/reader"
)

// Loader loads configuration and prepares a Reader with all the sinks registered
//
// Loader should take care of everything derived from the config file, but not trigger anything automatically
type Loader struct {
	Config
	MetricFactory *base.MetricFactory
}

// NewLoaderFromConfigFile loads and verifies the config file. Metrics are registered to the default registerer.
func NewLoaderFromConfigFile(filepath string, metricPrefix string) (*Loader, error) {
	config, err := LoadConfigFile(filepath)
	if err != nil {
		return nil, err
	}
	return NewLoader(config, base.NewMetricFactory(metricPrefix, nil, nil, prometheus.DefaultRegisterer)), nil
}

// NewLoader creates a Loader from verified config
func NewLoader(config *Config, metricFactory *base.MetricFactory) *Loader {
	return &Loader{
		Config:        *config,
		MetricFactory: metricFactory,
	}
}

// NewReader creates an idle Reader with the configured source, parser and sinks
//
// Sinks are registered in the order of config
func (loader *Loader) NewReader(parentLogger logger.Logger) (*reader.Reader, error) {
	source, err := loader.Source.Value.NewSource(parentLogger)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return loader.NewReaderWithSource(parentLogger, source, true)
}

// NewReaderWithSource creates an idle Reader reading the given source instead of the configured one
//
// Configured sinks are skipped if withSinks is false, for callers to register their own
func (loader *Loader) NewReaderWithSource(parentLogger logger.Logger, source base.LogSource, withSinks bool) (*reader.Reader, error) {
	rd := reader.New(parentLogger, source, loader.Parser.Value.NewParserFactory(), loader.Reader, loader.MetricFactory)
	if !withSinks {
		return rd, nil
	}
	for i, holder := range loader.Sinks {
		sink, serr := holder.Value.NewSink(parentLogger, loader.MetricFactory)
		if serr != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, serr)
		}
		if aerr := rd.AddSink(sink); aerr != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, aerr)
		}
	}
	return rd, nil
}
