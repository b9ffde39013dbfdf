package exportfile

import (
	"github.com/c2h5oh/datasize"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/util"
)

// LineFormatter formats one item to a line without trailing newline
type LineFormatter func(item base.LogItem) string

// DefaultLineFormatter writes items in logcat "threadtime" format
func DefaultLineFormatter(item base.LogItem) string {
	return item.String()
}

// Settings defines where and how exported files are written. It's a value type.
type Settings struct {
	Dir         string
	Gzip        bool
	MaxFileSize datasize.ByteSize // 0 = no rotation
	Cleanup     CleanupConfig
	Format      LineFormatter
}

// DefaultSettings creates settings for the given export dir, keeping the last 2 files
func DefaultSettings(dir string) Settings {
	return Settings{
		Dir:         dir,
		Gzip:        false,
		MaxFileSize: datasize.ByteSize(defs.ExportFileMaxBytes),
		Cleanup: CleanupConfig{
			Strategy:  StrategyKeepLastFiles,
			Threshold: 2,
		},
		Format: DefaultLineFormatter,
	}
}

// SettingsHolder holds Settings which may be updated at any time, e.g. from another goroutine
//
// Sinks read the settings once for each new file
type SettingsHolder struct {
	ref util.AtomicRef[Settings]
}

// NewSettingsHolder creates a holder of the initial settings
func NewSettingsHolder(initial Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.ref.Set(&initial)
	return holder
}

// Get returns a copy of current settings
func (holder *SettingsHolder) Get() Settings {
	return *holder.ref.Get()
}

// Update changes only the parts of settings which transform wants to change, and returns the new settings
//
// transform may be called more than once under concurrent updates
func (holder *SettingsHolder) Update(transform func(current Settings) Settings) Settings {
	return *holder.ref.Update(func(current *Settings) *Settings {
		next := transform(*current)
		return &next
	})
}
