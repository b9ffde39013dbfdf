// Package exportfile exports log items to rotated text files in a marked directory
package exportfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/defs"
)

// FileNameLayout is the time layout of exported file names, in local time
const FileNameLayout = "2006-01-02 15:04:05.000"

const maxNameAttempts = 1000

// Sink writes items to export files
type Sink struct {
	logger         logger.Logger
	name           string
	settings       *SettingsHolder
	now            func() time.Time
	current        *exportFile
	filesCounter   prometheus.Counter
	bytesCounter   prometheus.Counter
	cleanedCounter prometheus.Counter
	lastFilePath   string
	lastSettings   Settings
}

type exportFile struct {
	path       string
	file       *os.File
	gzipWriter *gzip.Writer
	writer     *bufio.Writer
	numBytes   int64
	settings   Settings
}

// NewSink creates an export sink and prepares the export dir of current settings
func NewSink(parentLogger logger.Logger, name string, settings *SettingsHolder, metricFactory *base.MetricFactory) (*Sink, error) {
	sinkLogger := parentLogger.WithFields(logger.Fields{
		defs.LabelComponent: "ExportFileSink",
		defs.LabelSink:      name,
	})
	if err := ensureExportDir(sinkLogger, settings.Get().Dir); err != nil {
		return nil, err
	}
	sinkFactory := metricFactory.NewSubFactory("export_", []string{defs.LabelSink}, []string{name})
	return &Sink{
		logger:         sinkLogger,
		name:           name,
		settings:       settings,
		now:            time.Now,
		current:        nil,
		filesCounter:   sinkFactory.AddOrGetCounter("files_total", "Numbers of export files opened", nil, nil),
		bytesCounter:   sinkFactory.AddOrGetCounter("bytes_total", "Numbers of uncompressed bytes exported", nil, nil),
		cleanedCounter: sinkFactory.AddOrGetCounter("cleaned_files_total", "Numbers of old export files deleted", nil, nil),
	}, nil
}

// Name returns the sink name
func (sink *Sink) Name() string {
	return sink.name
}

// Settings returns the holder, through which settings may be updated for subsequent files
func (sink *Sink) Settings() *SettingsHolder {
	return sink.settings
}

// SetClock replaces the clock used to name files
func (sink *Sink) SetClock(now func() time.Time) {
	sink.now = now
}

// LastFilePath returns the path of the last opened file, or empty
func (sink *Sink) LastFilePath() string {
	return sink.lastFilePath
}

// AppendList writes the items to current file, opening or rotating files as needed
func (sink *Sink) AppendList(items []base.LogItem) error {
	if sink.current == nil {
		f, err := sink.openFile()
		if err != nil {
			return err
		}
		sink.current = f
	}
	cur := sink.current

	numBytes := 0
	for _, item := range items {
		line := cur.settings.Format(item)
		if _, err := cur.writer.WriteString(line); err != nil {
			return sink.abandonCurrent(err)
		}
		if err := cur.writer.WriteByte('\n'); err != nil {
			return sink.abandonCurrent(err)
		}
		numBytes += len(line) + 1
	}
	if err := cur.writer.Flush(); err != nil {
		return sink.abandonCurrent(err)
	}
	cur.numBytes += int64(numBytes)
	sink.bytesCounter.Add(float64(numBytes))

	if limit := int64(cur.settings.MaxFileSize); limit > 0 && cur.numBytes >= limit {
		sink.logger.Infof("rotating %s at %d bytes", cur.path, cur.numBytes)
		sink.current = nil
		return cur.close()
	}
	return nil
}

// OnFinish closes the current file and deletes old files by the cleanup strategy
func (sink *Sink) OnFinish() error {
	var cerr error
	if sink.current != nil {
		cerr = sink.current.close()
		sink.current = nil
	}

	// clean the dir of the last file, which may differ from current settings
	settings := sink.lastSettings
	if sink.lastFilePath == "" {
		settings = sink.settings.Get()
	}
	numDeleted, err := cleanupDir(sink.logger, settings.Dir, settings.Cleanup, time.Now())
	sink.cleanedCounter.Add(float64(numDeleted))
	if cerr != nil {
		return cerr
	}
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	return nil
}

// abandonCurrent closes the current file after a write error, so that the next chunk goes to a new file
func (sink *Sink) abandonCurrent(writeErr error) error {
	cur := sink.current
	sink.current = nil
	if err := cur.close(); err != nil {
		sink.logger.Warnf("failed to close broken %s: %s", cur.path, err.Error())
	}
	return fmt.Errorf("failed to write %s: %w", cur.path, writeErr)
}

func (sink *Sink) openFile() (*exportFile, error) {
	settings := sink.settings.Get()
	if err := ensureExportDir(sink.logger, settings.Dir); err != nil {
		return nil, err
	}
	if settings.Format == nil {
		settings.Format = DefaultLineFormatter
	}

	ext := ".log"
	if settings.Gzip {
		ext = ".log.gz"
	}
	baseName := sink.now().Local().Format(FileNameLayout)

	for i := 0; i < maxNameAttempts; i++ {
		fileName := baseName + ext
		if i > 0 {
			fileName = baseName + "-" + strconv.Itoa(i) + ext
		}
		path := filepath.Join(settings.Dir, fileName)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create export file: %w", err)
		}

		f := &exportFile{
			path:     path,
			file:     file,
			settings: settings,
		}
		if settings.Gzip {
			f.gzipWriter = gzip.NewWriter(file)
			f.writer = bufio.NewWriter(f.gzipWriter)
		} else {
			f.writer = bufio.NewWriter(file)
		}
		sink.filesCounter.Inc()
		sink.lastFilePath = path
		sink.lastSettings = settings
		sink.logger.Infof("opened %s", path)
		return f, nil
	}
	return nil, fmt.Errorf("failed to find a free file name for %s in %s", baseName, settings.Dir)
}

func (f *exportFile) close() error {
	werr := f.writer.Flush()
	var gerr error
	if f.gzipWriter != nil {
		gerr = f.gzipWriter.Close()
	}
	ferr := f.file.Close()
	switch {
	case werr != nil:
		return fmt.Errorf("failed to flush %s: %w", f.path, werr)
	case gerr != nil:
		return fmt.Errorf("failed to close gzip stream of %s: %w", f.path, gerr)
	case ferr != nil:
		return fmt.Errorf("failed to close %s: %w", f.path, ferr)
	}
	return nil
}
