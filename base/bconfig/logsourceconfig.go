package bconfig

import (
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
)

// LogSourceConfig provides an interface for the configuration of LogSource
//
// All the implementations should support YAML unmarshalling
type LogSourceConfig interface {
	BaseConfig

	NewSource(parentLogger logger.Logger) (base.LogSource, error)

	VerifyConfig() error
}

type LogSourceConfigHolder = ConfigHolder[LogSourceConfig]
type LogSourceConfigCreatorTable = ConfigCreatorTable[LogSourceConfig]
