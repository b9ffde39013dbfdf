package bconfig

import (
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
)

// LogSinkConfig provides an interface for the configuration of LogSink
//
// All the implementations should support YAML unmarshalling
type LogSinkConfig interface {
	BaseConfig

	// NewSink creates the sink. Sinks with metrics create them from the given factory.
	NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error)

	VerifyConfig() error
}

type LogSinkConfigHolder = ConfigHolder[LogSinkConfig]
type LogSinkConfigCreatorTable = ConfigCreatorTable[LogSinkConfig]
