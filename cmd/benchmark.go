package cmd

import (
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/test"
)

type benchmarkCommandState struct {
	Input  string `help:"Input file path or wildcard pattern (binary logcat)."`
	Output string `help:"Output:\n'': (empty) deliver to sinks as configured\n'null': count and abandon all items"`
	Repeat int    `help:"Repeat times"`
	Config string `help:"Configuration file path, for reader, parser and sinks"`
}

var benchCmd = benchmarkCommandState{
	Input:  "testdata/development/*.bin",
	Output: test.OutputNull,
	Config: "testdata/config_sample.yml",
	Repeat: 10000,
}

func (cmd *benchmarkCommandState) runBenchmarkReaderCommand(_ []string) {
	defs.EnableTestMode()
	test.RunBenchmarkReader(cmd.Input, cmd.Output, cmd.Repeat, cmd.Config)
}

func (cmd *benchmarkCommandState) runBenchmarkTCPCommand(_ []string) {
	defs.EnableTestMode()
	test.RunBenchmarkTCP(cmd.Input, cmd.Output, cmd.Repeat, cmd.Config)
}
