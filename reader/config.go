package reader

import (
	"time"

	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/defs"
)

// Config defines batching and failure reporting of Reader
type Config struct {
	// BatchMaxItems is the size of a full chunk; zero means defs.ReaderBatchMaxItems
	BatchMaxItems int `yaml:"batchMaxItems"`

	// FlushInterval is the max delay of a partial chunk since its first item; zero means defs.ReaderFlushInterval
	FlushInterval time.Duration `yaml:"flushInterval"`

	// OnSinkFailure is called on the run goroutine for each failed sink call
	OnSinkFailure func(failure base.SinkFailure) `yaml:"-"`
}

func (config Config) withDefaults() Config {
	if config.BatchMaxItems <= 0 {
		config.BatchMaxItems = defs.ReaderBatchMaxItems
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = defs.ReaderFlushInterval
	}
	return config
}
