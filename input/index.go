// Package input registers the list of all LogSource and LogParser implementations
package input

import (
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/input/filesource"
	"github.com/relex/logcat-agent/input/itempack"
	"github.com/relex/logcat-agent/input/logcatbinary"
	"github.com/relex/logcat-agent/input/tcpsource"
)

func init() {
	bconfig.RegisterConfigConstructors(bconfig.LogSourceConfigCreatorTable{
		"file": func() bconfig.LogSourceConfig { return &filesource.Config{} },
		"tcp":  func() bconfig.LogSourceConfig { return &tcpsource.Config{} },
	})
	bconfig.RegisterConfigConstructors(bconfig.LogParserConfigCreatorTable{
		"logcatBinary": func() bconfig.LogParserConfig { return &logcatbinary.Config{} },
		"itemPack":     func() bconfig.LogParserConfig { return &itempack.Config{} },
	})
}

// Register registers all source and parser config types
func Register() {
	// trigger init()
}
