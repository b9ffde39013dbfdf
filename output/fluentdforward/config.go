package fluentdforward

import (
	"fmt"
	"net"

	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
)

// Config defines configuration for fluentd-forward sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Name           string                      `yaml:"name"`        // default "fluentdForward"
	Tag            string                      `yaml:"tag"`         // fluentd tag of all events
	MessageMode    forwardprotocol.MessageMode `yaml:"messageMode"` // default Forward
	Upstream       UpstreamConfig              `yaml:"upstream"`
}

// UpstreamConfig defines the upstream section in config file
type UpstreamConfig struct {
	Address string `yaml:"address"`
	TLS     bool   `yaml:"tls"`
	Secret  string `yaml:"secret"`
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if cfg.Tag == "" {
		return fmt.Errorf(".tag is unspecified")
	}

	switch cfg.MessageMode {
	case "":
	case forwardprotocol.ModeForward:
	case forwardprotocol.ModePackedForward:
	case forwardprotocol.ModeCompressedPackedForward:
	default:
		return fmt.Errorf(".messageMode: '%s' is not a valid mode", cfg.MessageMode)
	}

	if len(cfg.Upstream.Address) == 0 {
		return fmt.Errorf(".upstream.address is unspecified")
	}
	if _, _, err := net.SplitHostPort(cfg.Upstream.Address); err != nil {
		return fmt.Errorf(".upstream.address is invalid: %w", err)
	}

	if cfg.Upstream.TLS && len(cfg.Upstream.Secret) == 0 {
		return fmt.Errorf(".upstream.secret is unspecified when tls=true")
	}
	return nil
}

// NewSink creates the forwarding sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "fluentdForward"
	}
	mode := cfg.MessageMode
	if mode == "" {
		mode = forwardprotocol.ModeForward
	}
	sink, err := NewSink(parentLogger, name, cfg.Tag, mode, cfg.Upstream, metricFactory)
	if err != nil {
		return nil, err
	}
	return sink, nil
}
