// Package datadog provides a sink to send log items to the HTTP logs intake of Datadog
package datadog

import (
	"errors"
	"os"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
)

// APIKeyEnv is the environment variable of API key, used when the config doesn't specify one
const APIKeyEnv = "DD_API_KEY"

// Config defines the Datadog sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Name           string              `yaml:"name"` // default "datadog"
	Serialization  SerializationConfig `yaml:"serialization"`
	Upstream       UpstreamConfig      `yaml:"upstream"`
}

// SerializationConfig defines the reserved attributes added to every event
type SerializationConfig struct {
	Source   string `yaml:"source"`   // ddsource, default "logcat"
	Tags     string `yaml:"tags"`     // ddtags, e.g. "env:qa,device:pixel"
	Service  string `yaml:"service"`  // service
	Hostname string `yaml:"hostname"` // hostname
}

// UpstreamConfig defines the intake endpoint
type UpstreamConfig struct {
	Address     string        `yaml:"address"` // e.g. https://http-intake.logs.datadoghq.eu/api/v2/logs
	APIKey      string        `yaml:"apiKey"`  // may contain environment variables; default $DD_API_KEY
	HTTPTimeout time.Duration `yaml:"httpTimeout"`
}

// VerifyConfig checks the upstream
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Upstream.Address) == 0 {
		return errors.New(".upstream.address is unspecified")
	}
	if cfg.Upstream.HTTPTimeout <= 0 {
		return errors.New(".upstream.httpTimeout is unspecified")
	}
	return nil
}

// NewSink creates the Datadog sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "datadog"
	}
	upstream := cfg.Upstream
	if upstream.APIKey == "" {
		upstream.APIKey = os.Getenv(APIKeyEnv)
	} else {
		upstream.APIKey = os.ExpandEnv(upstream.APIKey)
	}
	serialization := cfg.Serialization
	if serialization.Source == "" {
		serialization.Source = "logcat"
	}
	sink, err := NewSink(parentLogger, name, serialization, upstream, metricFactory)
	if err != nil {
		return nil, err
	}
	return sink, nil
}
