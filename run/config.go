package run

import (
	"fmt"

	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/input"
	"github.com/relex/logcat-agent/output"
	"github.com/relex/logcat-agent/reader"
	"github.com/relex/logcat-agent/util"
)

// Config defines the root of logcat-agent config file
type Config struct {
	Reader reader.Config                 `yaml:"reader"`
	Source bconfig.LogSourceConfigHolder `yaml:"source"`
	Parser bconfig.LogParserConfigHolder `yaml:"parser"`
	Sinks  []bconfig.LogSinkConfigHolder `yaml:"sinks"`
}

func init() {
	input.Register()
	output.Register()
}

// LoadConfigFile loads config from the path and verifies all sections
func LoadConfigFile(filepath string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := cref.VerifyConfig(); err != nil {
		return nil, err
	}
	return cref, nil
}

// ParseConfig parses config from a string and verifies all sections
func ParseConfig(contents string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlString(contents, cref); err != nil {
		return nil, err
	}
	if err := cref.VerifyConfig(); err != nil {
		return nil, err
	}
	return cref, nil
}

// VerifyConfig checks the presence of source, parser and sinks and verifies each of them
func (cfg *Config) VerifyConfig() error {
	if cfg.Reader.BatchMaxItems < 0 {
		return fmt.Errorf("reader.batchMaxItems: negative value %d", cfg.Reader.BatchMaxItems)
	}
	if cfg.Reader.FlushInterval < 0 {
		return fmt.Errorf("reader.flushInterval: negative value %s", cfg.Reader.FlushInterval)
	}
	if cfg.Source.Value == nil {
		return fmt.Errorf("source: undefined")
	}
	if err := cfg.Source.Value.VerifyConfig(); err != nil {
		return fmt.Errorf("source: %s: %w", cfg.Source.Location, err)
	}
	if cfg.Parser.Value == nil {
		return fmt.Errorf("parser: undefined")
	}
	if len(cfg.Sinks) == 0 {
		return fmt.Errorf("sinks: no sink defined")
	}
	for i, holder := range cfg.Sinks {
		if err := holder.Value.VerifyConfig(); err != nil {
			return fmt.Errorf("sinks[%d]: %s: %w", i, holder.Location, err)
		}
	}
	return nil
}
