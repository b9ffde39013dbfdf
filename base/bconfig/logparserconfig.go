package bconfig

import (
	"github.com/relex/logcat-agent/base"
)

// LogParserConfig provides an interface for the configuration of LogParser
type LogParserConfig interface {
	BaseConfig

	NewParserFactory() base.LogParserFactory
}

type LogParserConfigHolder = ConfigHolder[LogParserConfig]
type LogParserConfigCreatorTable = ConfigCreatorTable[LogParserConfig]
