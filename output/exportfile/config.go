package exportfile

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
)

// Config defines the file export sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Name           string            `yaml:"name"`        // default "export"
	Dir            string            `yaml:"dir"`         // may contain environment variables
	Gzip           bool              `yaml:"gzip"`        // write .log.gz files
	MaxFileSize    datasize.ByteSize `yaml:"maxFileSize"` // default 64MB
	Cleanup        *CleanupConfig    `yaml:"cleanup"`     // default keepLastFiles=2
}

// VerifyConfig checks the dir and cleanup strategy
func (cfg *Config) VerifyConfig() error {
	if cfg.Dir == "" {
		return fmt.Errorf(".dir is empty")
	}
	if cfg.Cleanup != nil {
		if err := cfg.Cleanup.Verify(); err != nil {
			return fmt.Errorf(".cleanup: %w", err)
		}
	}
	return nil
}

// Settings converts the config to sink settings
func (cfg *Config) Settings() Settings {
	settings := DefaultSettings(os.ExpandEnv(cfg.Dir))
	settings.Gzip = cfg.Gzip
	if cfg.MaxFileSize > 0 {
		settings.MaxFileSize = cfg.MaxFileSize
	}
	if cfg.Cleanup != nil {
		settings.Cleanup = *cfg.Cleanup
	}
	return settings
}

// NewSink creates the export sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "export"
	}
	sink, err := NewSink(parentLogger, name, NewSettingsHolder(cfg.Settings()), metricFactory)
	if err != nil {
		return nil, err
	}
	return sink, nil
}
