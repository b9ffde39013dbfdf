package logcatbinary

import (
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
)

// Config defines the parser of binary logcat streams, which has no option
type Config struct {
	bconfig.Header `yaml:",inline"`
}

// NewParserFactory returns NewParser
func (cfg *Config) NewParserFactory() base.LogParserFactory {
	return NewParser
}
