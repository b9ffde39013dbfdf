// Package cmd provides list of commands including the agent, tools and self-benchmarks
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "logcat-agent reads Android logcat streams and delivers them to files, consoles and log pipelines", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("run ...", "Run agent", &runCmd, runCmd.run)
	config.AddCmdWithArgs("dump ...", "Print a logcat capture or item pack to stdout", &dumpCmd, dumpCmd.run)
	config.AddCmdWithArgs("benchmark <type> ...", "Run benchmark of specified type", &benchCmd, nil)
	config.AddCmdWithArgs("benchmark reader ...", "Benchmark reader of in-memory input", nil, benchCmd.runBenchmarkReaderCommand)
	config.AddCmdWithArgs("benchmark tcp ...", "Benchmark reader of TCP input from a local server", nil, benchCmd.runBenchmarkTCPCommand)
}

// Execute parses the command line and runs the specified command
func Execute() {
	// trigger init

	config.Execute()
}
