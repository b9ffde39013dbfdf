// Package output registers the list of all LogSink implementations
package output

import (
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/output/console"
	"github.com/relex/logcat-agent/output/datadog"
	"github.com/relex/logcat-agent/output/exportfile"
	"github.com/relex/logcat-agent/output/filtersink"
	"github.com/relex/logcat-agent/output/fluentdforward"
	"github.com/relex/logcat-agent/output/itempack"
	"github.com/relex/logcat-agent/output/rewritesink"
	"github.com/relex/logcat-agent/output/statsink"
)

func init() {
	bconfig.RegisterConfigConstructors(bconfig.LogSinkConfigCreatorTable{
		"console":        func() bconfig.LogSinkConfig { return &console.Config{} },
		"datadog":        func() bconfig.LogSinkConfig { return &datadog.Config{} },
		"exportFile":     func() bconfig.LogSinkConfig { return &exportfile.Config{} },
		"filter":         func() bconfig.LogSinkConfig { return &filtersink.Config{} },
		"fluentdForward": func() bconfig.LogSinkConfig { return &fluentdforward.Config{} },
		"itemPack":       func() bconfig.LogSinkConfig { return &itempack.Config{} },
		"rewrite":        func() bconfig.LogSinkConfig { return &rewritesink.Config{} },
		"stats":          func() bconfig.LogSinkConfig { return &statsink.Config{} },
	})
}

// Register registers all sink config types
func Register() {
	// trigger init()
}
