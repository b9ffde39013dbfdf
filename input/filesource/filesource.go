// Package filesource reads raw log streams from files or stdin
package filesource

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bconfig"
	"github.com/relex/logcat-agent/defs"
)

// StdinPath is the path to read from stdin
const StdinPath = "-"

var gzipMagic = []byte{0x1f, 0x8b}

// Config defines a source of local file
type Config struct {
	bconfig.Header `yaml:",inline"`
	Path           string `yaml:"path"`           // file path, "-" for stdin; may contain environment variables
	Gzip           *bool  `yaml:"gzip,omitempty"` // decompress input; default is by the gzip magic bytes at the start
}

type fileSource struct {
	logger logger.Logger
	path   string
	gzip   *bool
}

// fileStream decides on decompression at the first Read, so that Open never blocks on stdin
type fileStream struct {
	logger     logger.Logger
	file       *os.File
	useGzip    *bool
	reader     io.Reader // nil before the first Read
	gzipReader *gzip.Reader
	prepareErr error
}

// VerifyConfig checks the path is set
func (cfg *Config) VerifyConfig() error {
	if cfg.Path == "" {
		return fmt.Errorf(".path is empty")
	}
	return nil
}

// NewSource creates the file source
func (cfg *Config) NewSource(parentLogger logger.Logger) (base.LogSource, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	return NewSource(parentLogger, os.ExpandEnv(cfg.Path), cfg.Gzip), nil
}

// NewSource creates a LogSource of file path or stdin
//
// If useGzip is nil, gzip input is detected by its magic bytes
func NewSource(parentLogger logger.Logger, path string, useGzip *bool) base.LogSource {
	return &fileSource{
		logger: parentLogger.WithField(defs.LabelComponent, "FileSource"),
		path:   path,
		gzip:   useGzip,
	}
}

func (src *fileSource) Open() (io.ReadCloser, error) {
	var file *os.File
	if src.path == StdinPath {
		src.logger.Info("reading stdin")
		file = os.Stdin
	} else {
		f, err := os.Open(src.path)
		if err != nil {
			return nil, err
		}
		src.logger.Infof("reading %s", src.path)
		file = f
	}

	return &fileStream{
		logger:  src.logger,
		file:    file,
		useGzip: src.gzip,
	}, nil
}

func (src *fileSource) String() string {
	if src.path == StdinPath {
		return "stdin"
	}
	return src.path
}

func (stream *fileStream) Read(p []byte) (int, error) {
	if stream.reader == nil {
		if stream.prepareErr == nil {
			stream.prepareErr = stream.prepare()
		}
		if stream.prepareErr != nil {
			return 0, stream.prepareErr
		}
	}
	return stream.reader.Read(p)
}

func (stream *fileStream) prepare() error {
	buffered := bufio.NewReader(stream.file)
	var useGzip bool
	if stream.useGzip != nil {
		useGzip = *stream.useGzip
	} else {
		// a short or empty input is never gzip; read errors are left to the parser
		magic, _ := buffered.Peek(len(gzipMagic))
		useGzip = bytes.Equal(magic, gzipMagic)
	}
	if !useGzip {
		stream.reader = buffered
		return nil
	}

	stream.logger.Debugf("decompressing %s", stream.file.Name())
	gz, err := gzip.NewReader(buffered)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	stream.gzipReader = gz
	stream.reader = gz
	return nil
}

func (stream *fileStream) Close() error {
	var gerr error
	if stream.gzipReader != nil {
		gerr = stream.gzipReader.Close()
	}
	if ferr := stream.file.Close(); ferr != nil {
		return ferr
	}
	return gerr
}
