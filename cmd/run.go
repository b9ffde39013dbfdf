package cmd

import (
	"context"
	"os"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/reader"
	"github.com/relex/logcat-agent/run"
	"github.com/relex/logcat-agent/util"
)

type runCommandState struct {
	Config      string `help:"Configuration file path"`
	MetricsAddr string `help:"The listener address to expose Prometheus metrics and debug information"`
	TestMode    bool   `help:"Use test mode config: short timeout"`
}

var runCmd runCommandState = runCommandState{
	Config:      "config.yml",
	MetricsAddr: ":9335",
	TestMode:    false,
}

func (cmd *runCommandState) run(args []string) {
	if cmd.TestMode {
		defs.EnableTestMode()
	}

	msrv := util.LaunchMetricsListener(cmd.MetricsAddr)

	result := run.Run(cmd.Config)

	if err := msrv.Shutdown(context.Background()); err != nil {
		logger.Errorf("error shutting down metrics listener: %v", err)
	}
	if result.Cause == reader.CauseReadError {
		os.Exit(1)
	}
}
