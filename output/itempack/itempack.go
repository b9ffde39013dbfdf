// Package itempack captures log items into msgpack files, which can be replayed by the itempack parser
package itempack

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/base/bpack"
	"github.com/relex/logcat-agent/defs"
	"github.com/vmihailenco/msgpack/v4"
)

// Config defines the capture sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Name           string `yaml:"name"`           // default "itemPack"
	Path           string `yaml:"path"`           // may contain environment variables
	Gzip           *bool  `yaml:"gzip,omitempty"` // default is by ".gz" suffix
}

// Sink writes items to a capture file. The file is truncated on the first run and appended by later runs.
type Sink struct {
	logger     logger.Logger
	name       string
	path       string
	gzip       bool
	numOpened  int
	file       *os.File
	gzipWriter *gzip.Writer
	writer     *bufio.Writer
	encoder    *msgpack.Encoder
}

// VerifyConfig checks the path
func (cfg *Config) VerifyConfig() error {
	if cfg.Path == "" {
		return fmt.Errorf(".path is empty")
	}
	return nil
}

// NewSink creates the capture sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.LogSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = "itemPack"
	}
	path := os.ExpandEnv(cfg.Path)
	useGzip := strings.HasSuffix(path, ".gz")
	if cfg.Gzip != nil {
		useGzip = *cfg.Gzip
	}
	return NewSink(parentLogger, name, path, useGzip), nil
}

// NewSink creates a sink to capture items to the given path. The file is created on the first chunk.
func NewSink(parentLogger logger.Logger, name string, path string, useGzip bool) *Sink {
	return &Sink{
		logger: parentLogger.WithFields(logger.Fields{
			defs.LabelComponent: "ItemPackSink",
			defs.LabelSink:      name,
		}),
		name: name,
		path: path,
		gzip: useGzip,
	}
}

// Name returns the sink name
func (sink *Sink) Name() string {
	return sink.name
}

// AppendList encodes the items
func (sink *Sink) AppendList(items []base.LogItem) error {
	if sink.file == nil {
		if err := sink.open(); err != nil {
			return err
		}
	}
	for _, item := range items {
		if err := bpack.EncodeItem(sink.encoder, item); err != nil {
			return fmt.Errorf("failed to write %s: %w", sink.path, err)
		}
	}
	return sink.writer.Flush()
}

// OnFinish closes the file if opened
func (sink *Sink) OnFinish() error {
	if sink.file == nil {
		return nil
	}
	werr := sink.writer.Flush()
	var gerr error
	if sink.gzipWriter != nil {
		gerr = sink.gzipWriter.Close()
	}
	ferr := sink.file.Close()
	sink.file = nil
	sink.gzipWriter = nil
	sink.writer = nil
	sink.encoder = nil
	switch {
	case werr != nil:
		return fmt.Errorf("failed to flush %s: %w", sink.path, werr)
	case gerr != nil:
		return fmt.Errorf("failed to close gzip stream of %s: %w", sink.path, gerr)
	case ferr != nil:
		return fmt.Errorf("failed to close %s: %w", sink.path, ferr)
	}
	return nil
}

func (sink *Sink) open() error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if sink.numOpened > 0 {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	file, err := os.OpenFile(sink.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	sink.numOpened++
	sink.file = file
	if sink.gzip {
		sink.gzipWriter = gzip.NewWriter(file)
		sink.writer = bufio.NewWriter(sink.gzipWriter)
	} else {
		sink.writer = bufio.NewWriter(file)
	}
	sink.encoder = msgpack.NewEncoder(sink.writer)
	sink.logger.Infof("capturing to %s", sink.path)
	return nil
}
