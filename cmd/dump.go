package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/base"
	"github.com/relex/logcat-agent/base/bmatch"
	"github.com/relex/logcat-agent/input/filesource"
	"github.com/relex/logcat-agent/input/itempack"
	"github.com/relex/logcat-agent/input/logcatbinary"
	"github.com/relex/logcat-agent/output/console"
	"github.com/relex/logcat-agent/output/filtersink"
	"github.com/relex/logcat-agent/reader"
)

type dumpCommandState struct {
	Input   string `help:"Input file path, '-' for stdin. Gzip input is decompressed."`
	Parser  string `help:"Input format: logcatBinary or itemPack"`
	Level   string `help:"Minimum level to print, e.g. W or warning"`
	Tag     string `help:"Glob pattern of tags to print"`
	Grep    string `help:"Regular expression of messages to print"`
	JSON    bool   `help:"Print fluentd-style JSON instead of text lines"`
	Verbose bool   `help:"Log reader progress and metrics to stderr"`
}

var dumpCmd = dumpCommandState{
	Input:  "-",
	Parser: "logcatBinary",
}

func (cmd *dumpCommandState) run(_ []string) {
	dlogger := logger.WithField("command", "dump")

	var parse base.LogParserFactory
	switch cmd.Parser {
	case "logcatBinary":
		parse = logcatbinary.NewParser
	case "itemPack":
		parse = itempack.NewParser
	default:
		dlogger.Fatalf("unsupported parser '%s'", cmd.Parser)
	}

	filter, filterErr := cmd.buildFilter()
	if filterErr != nil {
		dlogger.Fatal(filterErr)
	}

	format := console.FormatText
	if cmd.JSON {
		format = console.FormatJSON
	}

	// metrics are collected for the summary only
	mfactory := base.NewMetricFactory("logcatdump_", nil, nil, prometheus.NewRegistry())
	source := filesource.NewSource(dlogger, cmd.Input, nil)
	rd := reader.New(dlogger, source, parse, reader.Config{}, mfactory)
	sink := filtersink.NewSink("dump", console.NewSink("stdout", os.Stdout, format), filter, mfactory)
	if err := rd.AddSink(sink); err != nil {
		dlogger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, runErr := rd.Run(ctx)
	if runErr != nil {
		dlogger.Fatal(runErr)
	}
	if cmd.Verbose {
		if metrics, err := mfactory.DumpMetrics(false); err != nil {
			dlogger.Warnf("failed to dump metrics: %s", err.Error())
		} else {
			dlogger.Info(metrics)
		}
	}
	if result.Cause == reader.CauseReadError {
		dlogger.Errorf("failed to read %s: %s", cmd.Input, result.Err.Error())
		os.Exit(1)
	}
}

func (cmd *dumpCommandState) buildFilter() (filtersink.Filter, error) {
	filter := filtersink.Filter{}
	if cmd.Level != "" {
		level, err := base.ParseLogLevel(cmd.Level)
		if err != nil {
			return filter, err
		}
		filter.MinLevel = level
	}

	conditions := bmatch.LogMatcherConfig{}
	if cmd.Tag != "" {
		match, err := bmatch.NewValueMatch("!!glob", cmd.Tag)
		if err != nil {
			return filter, err
		}
		conditions["tag"] = match
	}
	if cmd.Grep != "" {
		match, err := bmatch.NewValueMatch("!!regex", cmd.Grep)
		if err != nil {
			return filter, err
		}
		conditions["message"] = match
	}
	filter.Match = conditions.NewMatcher()
	return filter, nil
}
