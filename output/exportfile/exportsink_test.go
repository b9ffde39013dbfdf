package exportfile

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/btest"
	"github.com/relex/logcat-agent/defs"
	"github.com/stretchr/testify/assert"
)

var testClockTime = time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.Local)

func newTestSink(t *testing.T, settings Settings) (*Sink, *base.MetricFactory) {
	mfactory := base.NewMetricFactory("testexport_", nil, nil, prometheus.NewRegistry())
	sink, err := NewSink(logger.WithField("test", t.Name()), "test", NewSettingsHolder(settings), mfactory)
	if !assert.Nil(t, err) {
		t.FailNow()
	}
	sink.SetClock(func() time.Time { return testClockTime })
	return sink, mfactory
}

func listDir(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	assert.Nil(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func expectedLines(items []base.LogItem) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(item.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestExportSinkRotation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	settings := DefaultSettings(dir)
	settings.MaxFileSize = 50
	settings.Cleanup = CleanupConfig{Strategy: StrategyKeepLastFiles, Threshold: 10}
	sink, mfactory := newTestSink(t, settings)

	items := btest.NewTestItems("A", "B", "C", "D", "E")
	assert.Nil(t, sink.AppendList(items[0:2]))
	assert.Nil(t, sink.AppendList(items[2:4]))
	assert.Nil(t, sink.AppendList(items[4:5]))
	assert.Nil(t, sink.OnFinish())

	baseName := testClockTime.Format(FileNameLayout)
	assert.Equal(t, []string{
		defs.ExportMarkerFileName,
		baseName + "-1.log",
		baseName + "-2.log",
		baseName + ".log",
	}, listDir(t, dir))
	assert.Equal(t, filepath.Join(dir, baseName+"-2.log"), sink.LastFilePath())

	for name, chunk := range map[string][]base.LogItem{
		baseName + ".log":   items[0:2],
		baseName + "-1.log": items[2:4],
		baseName + "-2.log": items[4:5],
	} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		assert.Nil(t, err)
		assert.Equal(t, expectedLines(chunk), string(content), name)
	}

	metrics, _ := mfactory.DumpMetrics(false)
	assert.Contains(t, metrics, `testexport_export_files_total{sink="test"} 3`)
}

func TestExportSinkRecoverFromWriteError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink, mfactory := newTestSink(t, DefaultSettings(dir))

	items := btest.NewTestItems("A", "B", "C")
	assert.Nil(t, sink.AppendList(items[0:1]))
	// break the underlying file so that the next flush fails
	assert.Nil(t, sink.current.file.Close())
	assert.ErrorContains(t, sink.AppendList(items[1:2]), "failed to write")
	assert.Nil(t, sink.current)

	assert.Nil(t, sink.AppendList(items[2:3]))
	assert.Nil(t, sink.OnFinish())

	baseName := testClockTime.Format(FileNameLayout)
	assert.Equal(t, filepath.Join(dir, baseName+"-1.log"), sink.LastFilePath())
	content, err := os.ReadFile(sink.LastFilePath())
	assert.Nil(t, err)
	assert.Equal(t, expectedLines(items[2:3]), string(content))

	metrics, _ := mfactory.DumpMetrics(false)
	assert.Contains(t, metrics, `testexport_export_files_total{sink="test"} 2`)
}

func TestExportSinkGzip(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, os.WriteFile(filepath.Join(dir, defs.ExportMarkerFileName), nil, 0o644))
	settings := DefaultSettings(dir)
	settings.Gzip = true
	sink, _ := newTestSink(t, settings)

	items := btest.NewTestItems("A", "B", "C")
	assert.Nil(t, sink.AppendList(items[0:2]))
	assert.Nil(t, sink.AppendList(items[2:3]))
	assert.Nil(t, sink.OnFinish())

	path := filepath.Join(dir, testClockTime.Format(FileNameLayout)+".log.gz")
	assert.Equal(t, path, sink.LastFilePath())
	file, err := os.Open(path)
	assert.Nil(t, err)
	defer file.Close()
	gz, gerr := gzip.NewReader(file)
	assert.Nil(t, gerr)
	content, rerr := io.ReadAll(gz)
	assert.Nil(t, rerr)
	assert.Equal(t, expectedLines(items), string(content))
}

func TestExportSinkRequiresMarker(t *testing.T) {
	dir := t.TempDir()
	mfactory := base.NewMetricFactory("testexport_", nil, nil, prometheus.NewRegistry())
	_, err := NewSink(logger.WithField("test", t.Name()), "test", NewSettingsHolder(DefaultSettings(dir)), mfactory)
	assert.ErrorIs(t, err, ErrMarkerMissing)

	notDir := filepath.Join(dir, "file")
	assert.Nil(t, os.WriteFile(notDir, nil, 0o644))
	_, err = NewSink(logger.WithField("test", t.Name()), "test", NewSettingsHolder(DefaultSettings(notDir)), mfactory)
	assert.ErrorContains(t, err, "is not a directory")
}

func TestExportSinkSettingsUpdate(t *testing.T) {
	dir1 := filepath.Join(t.TempDir(), "first")
	dir2 := filepath.Join(t.TempDir(), "second")
	sink, _ := newTestSink(t, DefaultSettings(dir1))

	items := btest.NewTestItems("A", "B")
	assert.Nil(t, sink.AppendList(items[0:1]))

	updated := sink.Settings().Update(func(current Settings) Settings {
		current.Dir = dir2
		current.Format = func(item base.LogItem) string { return item.Message }
		return current
	})
	assert.Equal(t, dir2, updated.Dir)

	// the open file keeps its settings
	assert.Nil(t, sink.AppendList(items[1:2]))
	assert.Nil(t, sink.OnFinish())
	assert.Equal(t, dir1, filepath.Dir(sink.LastFilePath()))
	content, _ := os.ReadFile(sink.LastFilePath())
	assert.Equal(t, expectedLines(items), string(content))

	assert.Nil(t, sink.AppendList(items[0:1]))
	assert.Nil(t, sink.OnFinish())
	assert.Equal(t, dir2, filepath.Dir(sink.LastFilePath()))
	content, _ = os.ReadFile(sink.LastFilePath())
	assert.Equal(t, "item A\n", string(content))
	assert.Contains(t, listDir(t, dir2), defs.ExportMarkerFileName)
}

func TestExportSinkCleanupOnFinish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	settings := DefaultSettings(dir)
	settings.MaxFileSize = 1
	sink, mfactory := newTestSink(t, settings)

	items := btest.NewTestItems("A", "B", "C", "D")
	for i := range items {
		assert.Nil(t, sink.AppendList(items[i:i+1]))
	}
	assert.Len(t, listDir(t, dir), 5)

	// default config keeps the last 2
	assert.Nil(t, sink.OnFinish())
	assert.Len(t, listDir(t, dir), 3)
	assert.Contains(t, listDir(t, dir), defs.ExportMarkerFileName)

	metrics, _ := mfactory.DumpMetrics(false)
	assert.Contains(t, metrics, `testexport_export_cleaned_files_total{sink="test"} 2`)

	assert.Nil(t, os.Remove(filepath.Join(dir, defs.ExportMarkerFileName)))
	assert.ErrorIs(t, sink.OnFinish(), ErrMarkerMissing)
	assert.Len(t, listDir(t, dir), 2)
}

func TestExportConfig(t *testing.T) {
	cfg := &Config{}
	assert.EqualError(t, cfg.VerifyConfig(), ".dir is empty")

	cfg = &Config{Dir: "/tmp", Cleanup: &CleanupConfig{Strategy: "random"}}
	assert.EqualError(t, cfg.VerifyConfig(), ".cleanup: unsupported cleanup strategy 'random'")

	t.Setenv("TEST_EXPORT_DIR", "/var/exports")
	cfg = &Config{Dir: "$TEST_EXPORT_DIR/logcat", MaxFileSize: 1024}
	assert.Nil(t, cfg.VerifyConfig())
	settings := cfg.Settings()
	assert.Equal(t, "/var/exports/logcat", settings.Dir)
	assert.EqualValues(t, 1024, settings.MaxFileSize)
	assert.Equal(t, CleanupConfig{Strategy: StrategyKeepLastFiles, Threshold: 2}, settings.Cleanup)
	assert.False(t, settings.Gzip)
}
