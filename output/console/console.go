// Package console prints log items as text lines
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/output/fluentdforward"
)

// Format is the line format of console output
type Format string

// Supported formats
const (
	FormatText Format = "text" // logcat "threadtime" format
	FormatJSON Format = "json" // fluentd events in JSON, one per line
)

// DefaultJSONTag is the event tag in JSON lines
const DefaultJSONTag = "logcat"

// Config defines the console sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Name           string `yaml:"name"`   // default "console"
	Stream         string `yaml:"stream"` // "stdout" (default) or "stderr"
	Format         Format `yaml:"format"` // default text
}

// Sink writes item lines to a writer
type Sink struct {
	name   string
	writer *bufio.Writer
	format func(item base.LogItem) ([]byte, error)
}

// VerifyConfig checks the stream name and format
func (cfg *Config) VerifyConfig() error {
	switch cfg.Stream {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf(".stream: unsupported stream '%s'", cfg.Stream)
	}
	switch cfg.Format {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf(".format: unsupported format '%s'", cfg.Format)
	}
	return nil
}

// NewSink creates the console sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "console"
	}
	var output io.Writer = os.Stdout
	if cfg.Stream == "stderr" {
		output = os.Stderr
	}
	return NewSink(name, output, cfg.Format), nil
}

// NewSink creates a sink to print items to the given writer
func NewSink(name string, output io.Writer, format Format) *Sink {
	sink := &Sink{
		name:   name,
		writer: bufio.NewWriter(output),
		format: formatText,
	}
	if format == FormatJSON {
		sink.format = formatJSON
	}
	return sink
}

// Name returns the sink name
func (sink *Sink) Name() string {
	return sink.name
}

// AppendList prints one line for each item
func (sink *Sink) AppendList(items []base.LogItem) error {
	for _, item := range items {
		line, err := sink.format(item)
		if err != nil {
			return fmt.Errorf("failed to format item: %w", err)
		}
		sink.writer.Write(line)
		sink.writer.WriteByte('\n')
	}
	return sink.writer.Flush()
}

// OnFinish flushes the output
func (sink *Sink) OnFinish() error {
	return sink.writer.Flush()
}

func formatText(item base.LogItem) ([]byte, error) {
	return []byte(item.String()), nil
}

func formatJSON(item base.LogItem) ([]byte, error) {
	return fluentdforward.FormatEventJSON(item, DefaultJSONTag, false)
}
