package test

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/input/logcatbinary"
	"github.com/relex/logcat-agent/util"
)

// loadInput loads binary logcat captures into one data block and counts the entries
func loadInput(inputPath string) ([]byte, int) {
	pathList, gerr := util.ListFiles(inputPath)
	if gerr != nil {
		logger.Fatal(gerr)
	} else if len(pathList) == 0 {
		logger.Fatal("no input files")
	}
	data := make([]byte, 0)
	numEntries := 0
	for _, path := range pathList {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Fatalf("error reading %s: %v", path, err)
		}
		num, cerr := countEntries(content)
		if cerr != nil {
			logger.Fatalf("error parsing %s: %v", path, cerr)
		}
		data = append(data, content...)
		numEntries += num
		logger.Infof("loaded %s: %d entries, %d bytes", path, num, len(content))
	}
	return data, numEntries
}

func countEntries(data []byte) (int, error) {
	parser := logcatbinary.NewParser(bytes.NewReader(data))
	num := 0
	for {
		_, err := parser.Next()
		if errors.Is(err, io.EOF) {
			return num, nil
		}
		if err != nil {
			return num, err
		}
		num++
	}
}

// repeatedSource is a LogSource producing the same data block for the given times in one stream
type repeatedSource struct {
	data   []byte
	repeat int
}

type repeatedStream struct {
	source    *repeatedSource
	remaining int
	current   *bytes.Reader
}

func (src *repeatedSource) Open() (io.ReadCloser, error) {
	return &repeatedStream{source: src, remaining: src.repeat, current: bytes.NewReader(nil)}, nil
}

func (src *repeatedSource) String() string {
	return "memory"
}

func (stream *repeatedStream) Read(p []byte) (int, error) {
	for stream.current.Len() == 0 {
		if stream.remaining == 0 {
			return 0, io.EOF
		}
		stream.remaining--
		stream.current.Reset(stream.source.data)
	}
	return stream.current.Read(p)
}

// Close does nothing since reads never block
func (stream *repeatedStream) Close() error {
	return nil
}
