// Package test provides benchmarks and integration tests of the whole agent
package test

import (
	"context"
	"fmt"
	"net"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/input/tcpsource"
	"github.com/relex/logcat-agent/reader"
	"github.com/relex/logcat-agent/run"
	"github.com/relex/logcat-agent/util"
	"github.com/samber/lo"
)

// OutputNull replaces all configured sinks with a sink which only counts
const OutputNull = "null"

type benchmarkMetric struct {
	fmt string
	val float64
}

// nullSink abandons all items after counting
type nullSink struct {
	numItems  int
	numBytes  int
	numFinish int
}

func (sink *nullSink) Name() string {
	return OutputNull
}

func (sink *nullSink) AppendList(items []base.LogItem) error {
	sink.numItems += len(items)
	sink.numBytes += lo.SumBy(items, func(item base.LogItem) int { return len(item.Tag) + len(item.Message) })
	return nil
}

func (sink *nullSink) OnFinish() error {
	sink.numFinish++
	return nil
}

// RunBenchmarkReader benchmarks a reader of in-memory input, with the parser and sinks from config
func RunBenchmarkReader(inputPath string, output string, repeat int, configFile string) {
	inputData, numEntries := loadInput(inputPath)
	source := &repeatedSource{data: inputData, repeat: repeat}
	runBenchmark("BenchmarkReader", source, output, numEntries*repeat, int64(len(inputData))*int64(repeat), configFile)
}

// RunBenchmarkTCP benchmarks a reader of TCP input from a local server, with the parser and sinks from config
func RunBenchmarkTCP(inputPath string, output string, repeat int, configFile string) {
	inputData, numEntries := loadInput(inputPath)
	listener := launchBenchmarkInputServer(inputData, repeat)
	defer listener.Close()

	source := tcpsource.NewSource(logger.Root(), listener.Addr().String(), false)
	runBenchmark("BenchmarkTCP", source, output, numEntries*repeat, int64(len(inputData))*int64(repeat), configFile)
}

func runBenchmark(title string, source base.LogSource, output string, numLogs int, sizeOfLogs int64, configFile string) {
	config, configErr := run.LoadConfigFile(configFile)
	if configErr != nil {
		logger.Panic(configErr)
	}
	mfactory := base.NewMetricFactory("benchreader_", nil, nil, prometheus.NewRegistry())
	loader := run.NewLoader(config, mfactory)

	rd, readerErr := loader.NewReaderWithSource(logger.Root(), source, output != OutputNull)
	if readerErr != nil {
		logger.Panic(readerErr)
	}
	sink := &nullSink{}
	if output == OutputNull {
		if err := rd.AddSink(sink); err != nil {
			logger.Panic(err)
		}
	}

	costTracker := StartCostTracking()
	result := run.RunReader(context.Background(), rd)
	report := costTracker.Report()

	if result.Cause != reader.CauseExhausted {
		logger.Errorf("reader ended by %s: %v", result.Cause, result.Err)
	}
	reportBenchmarkResult(title, numLogs, sizeOfLogs, report, result, mfactory)
	if output == OutputNull {
		logger.Infof("null sink: %d items, %d bytes of tag and message, %d finish", sink.numItems, sink.numBytes, sink.numFinish)
	}
	if metrics, err := mfactory.DumpMetrics(false); err != nil {
		logger.Warnf("failed to dump metrics: %s", err.Error())
	} else {
		logger.Info(metrics)
	}
}

// launchBenchmarkInputServer serves the repeated input data to the first client and then closes the connection
func launchBenchmarkInputServer(inputData []byte, repeat int) net.Listener {
	const minFrameSize = 1 * 1024 * 1024

	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		logger.Fatal("listen: ", err.Error())
	}

	go func() {
		conn, aerr := listener.Accept()
		if aerr != nil {
			logger.Error("accept: ", aerr.Error())
			return
		}
		defer conn.Close()
		if len(inputData) == 0 {
			return
		}

		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		frameRepeat := 1
		if len(inputData) < minFrameSize {
			frameRepeat = minFrameSize/len(inputData) + 1
		}
		frame := make([]byte, 0, len(inputData)*frameRepeat)
		for i := 0; i < frameRepeat; i++ {
			frame = append(frame, inputData...)
		}

		numSent := int64(0)
		for remaining := repeat; remaining > 0; remaining -= frameRepeat {
			n, werr := conn.Write(frame[:len(inputData)*util.MinInt(remaining, frameRepeat)])
			numSent += int64(n)
			if werr != nil {
				logger.Error("error sending: ", werr.Error())
				return
			}
		}
		logger.Infof("server sent %d bytes", numSent)
	}()
	return listener
}

func reportBenchmarkResult(title string, numLogs int, sizeOfLogs int64, report CostReport, result reader.RunResult, mfactory *base.MetricFactory) {
	metrics := []benchmarkMetric{
		{fmt: "%.0f log/sec", val: float64(numLogs) / report.RealTime.Seconds()},
		{fmt: "%.0f MB/sec", val: float64(sizeOfLogs) / 1048576 / report.RealTime.Seconds()},
		{fmt: "%0.2f alloc/log", val: float64(report.NumHeapAllocs) / float64(numLogs)},
		{fmt: "%0.2f%% user", val: 100.0 * report.UserTime.Seconds() / report.RealTime.Seconds()},
		{fmt: "%0.2f%% sys", val: 100.0 * report.SystemTime.Seconds() / report.RealTime.Seconds()},
		{fmt: "%0.2f%% gc", val: 100.0 * report.GCCPUFraction},
		{fmt: "%.02f sec", val: report.RealTime.Seconds()},
	}
	if result.NumItems != numLogs {
		logger.Errorf("numbers of read items don't match: %d, should be %d", result.NumItems, numLogs)
	}
	numDelivered := util.SumMetricValues(mfactory.AddOrGetCounterVec("sink_delivered_items_total", "", []string{"sink"}, nil))
	metrics = append(metrics, benchmarkMetric{fmt: "%.0f log/chunk", val: float64(result.NumItems) / float64(result.NumChunks)})
	metrics = append(metrics, benchmarkMetric{fmt: "%.0f delivered", val: numDelivered})
	metrics = append(metrics, benchmarkMetric{fmt: "%.0f MB in", val: float64(sizeOfLogs) / 1048576})
	metrics = append(metrics, benchmarkMetric{fmt: "%.0f sink failures", val: float64(len(result.Failures))})
	printBenchmarkMetrics(title, metrics)
}

func printBenchmarkMetrics(title string, metrics []benchmarkMetric) {
	sb := make([]byte, 0, 200)
	sb = append(sb, fmt.Sprintf("%s:", title)...)
	for _, m := range metrics {
		sb = append(sb, fmt.Sprintf("\t"+m.fmt, m.val)...)
	}
	fmt.Println(string(sb))
}
