package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/btest"
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/input/logcatbinary"
	"github.com/relex/logcat-agent/reader"
	"github.com/relex/logcat-agent/testdata"
	"github.com/stretchr/testify/assert"
)

const sampleConf = `
reader:
  batchMaxItems: 2
  flushInterval: 100ms
source:
  type: file
  path: %s
parser:
  type: logcatBinary
sinks:
  - type: exportFile
    dir: %s
    cleanup:
      strategy: keepLastFiles
      threshold: 3
  - type: filter
    minLevel: warning
    sink:
      type: itemPack
      path: %s
  - type: stats
`

func writeLogcatFile(t *testing.T, path string, items []base.LogItem) {
	buf := make([]byte, 0, 4096)
	for _, item := range items {
		buf = logcatbinary.AppendEntry(buf, item, 4)
	}
	assert.Nil(t, os.WriteFile(path, buf, 0o644))
}

func TestLoaderRun(t *testing.T) {
	tlogger := logger.WithField("test", t.Name())
	tmpDir := t.TempDir()

	items := btest.NewTestItems("A", "B", "C", "D", "E")
	items[1].Level = base.LevelWarning
	items[3].Level = base.LevelError
	inputPath := filepath.Join(tmpDir, "input.bin")
	writeLogcatFile(t, inputPath, items)

	exportDir := filepath.Join(tmpDir, "export")
	packPath := filepath.Join(tmpDir, "warnings.pack")

	config, configErr := ParseConfig(fmt.Sprintf(sampleConf, inputPath, exportDir, packPath))
	if !assert.Nil(t, configErr) {
		return
	}
	assert.Equal(t, 2, config.Reader.BatchMaxItems)
	assert.Len(t, config.Sinks, 3)

	mfactory := base.NewMetricFactory("testrun_", nil, nil, prometheus.NewRegistry())
	loader := NewLoader(config, mfactory)
	rd, readerErr := loader.NewReader(tlogger)
	if !assert.Nil(t, readerErr) {
		return
	}
	assert.Len(t, rd.Sinks(), 3)

	result := RunReader(context.Background(), rd)
	assert.Equal(t, reader.CauseExhausted, result.Cause)
	assert.Equal(t, 5, result.NumItems)
	assert.Equal(t, 3, result.NumChunks)
	assert.Empty(t, result.Failures)
	assert.True(t, rd.Stopped().Wait(defs.TestReadTimeout))

	entries, dirErr := os.ReadDir(exportDir)
	assert.Nil(t, dirErr)
	var exported []string
	for _, entry := range entries {
		if entry.Name() != defs.ExportMarkerFileName {
			exported = append(exported, entry.Name())
		}
	}
	if assert.Len(t, exported, 1) {
		assert.True(t, strings.HasSuffix(exported[0], ".log"))
		data, readErr := os.ReadFile(filepath.Join(exportDir, exported[0]))
		assert.Nil(t, readErr)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		if assert.Len(t, lines, 5) {
			assert.Contains(t, lines[0], "item A")
			assert.Contains(t, lines[4], "item E")
		}
	}

	packInfo, packErr := os.Stat(packPath)
	if assert.Nil(t, packErr) {
		assert.Greater(t, packInfo.Size(), int64(0))
	}

	dump, dumpErr := mfactory.DumpMetrics(false)
	assert.Nil(t, dumpErr)
	assert.Contains(t, dump, "testrun_items_total 5\n")
}

func TestLoaderCancel(t *testing.T) {
	tlogger := logger.WithField("test", t.Name())

	mfactory := base.NewMetricFactory("testruncancel_", nil, nil, prometheus.NewRegistry())
	config := &Config{}
	source := &btest.ScriptedSource{Items: btest.NewTestItems("A"), Block: true}
	recorder := btest.NewLogItemRecorder("recorder")

	rd := reader.New(tlogger, source, btest.ScriptedParser, config.Reader, mfactory)
	assert.Nil(t, rd.AddSink(recorder))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := RunReader(ctx, rd)
	assert.Equal(t, reader.CauseCancelled, result.Cause)
	assert.Equal(t, 1, recorder.NumFinish())
}

func TestConfigErrors(t *testing.T) {
	_, err := ParseConfig(`
source:
  type: file
  path: /dev/null
parser:
  type: logcatBinary
`)
	assert.EqualError(t, err, "sinks: no sink defined")

	_, err = ParseConfig(`
source:
  type: file
  path: ""
parser:
  type: logcatBinary
sinks:
  - type: stats
`)
	assert.ErrorContains(t, err, "source: yaml line 3:3")

	_, err = ParseConfig(`
source:
  type: file
  path: /dev/null
sinks:
  - type: stats
`)
	assert.EqualError(t, err, "parser: undefined")

	_, err = ParseConfig(`
source:
  type: file
  path: /dev/null
parser:
  type: logcatBinary
sinks:
  - type: exportFile
`)
	assert.ErrorContains(t, err, "sinks[0]: yaml line 8:5")
	assert.ErrorContains(t, err, ".dir is empty")

	_, err = ParseConfig(`
source:
  type: file
  path: /dev/null
parser:
  type: logcatBinary
sinks:
  - type: stats
unknownSection: 1
`)
	assert.ErrorContains(t, err, "field unknownSection not found")
}

func TestLoadConfigFile(t *testing.T) {
	tlogger := logger.WithField("test", t.Name())
	t.Setenv("LOGCAT_CAPTURE", testdata.GetSampleLogcatPath())
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfigFile(testdata.GetConfigPath())
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, "file", config.Source.Value.GetType())
	assert.Equal(t, "logcatBinary", config.Parser.Value.GetType())
	assert.Len(t, config.Sinks, 3)

	recorder := btest.NewLogItemRecorder("recorder")
	loader := NewLoader(config, base.NewMetricFactory("testsample_", nil, nil, prometheus.NewRegistry()))
	rd, readerErr := loader.NewReader(tlogger)
	if !assert.Nil(t, readerErr) {
		return
	}
	assert.Nil(t, rd.AddSink(recorder))

	result := RunReader(context.Background(), rd)
	assert.Equal(t, reader.CauseExhausted, result.Cause)
	assert.Empty(t, result.Failures)
	if assert.Len(t, recorder.Items(), testdata.SampleLogcatItems) {
		assert.Equal(t, testdata.SampleLogcatFirstTag, recorder.Items()[0].Tag)
	}

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "not_exist.yml"))
	assert.True(t, os.IsNotExist(err))
}
