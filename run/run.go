// Package run runs the actual log agent
package run

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/reader"
)

// Run runs the agent until the end of source or stopped by signals
func Run(configFile string) reader.RunResult {
	loader, loaderErr := NewLoaderFromConfigFile(configFile, "logcatagent_")
	if loaderErr != nil {
		logger.Fatal(loaderErr)
	}

	rd, readerErr := loader.NewReader(logger.Root())
	if readerErr != nil {
		logger.Fatal(readerErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return RunReader(ctx, rd)
}

// RunReader runs the given reader until it ends by itself or ctx is cancelled
func RunReader(ctx context.Context, rd *reader.Reader) reader.RunResult {
	runLogger := logger.WithField(defs.LabelComponent, "Launcher")

	result, err := rd.Run(ctx)
	if err != nil {
		runLogger.Panicf("failed to run reader: %s", err.Error())
	}

	switch result.Cause {
	case reader.CauseReadError:
		runLogger.Errorf("stopped by read error: %s", result.Err.Error())
	case reader.CauseCancelled:
		runLogger.Info("stopped by signal")
	default:
		runLogger.Info("reached end of source")
	}
	if len(result.Failures) > 0 {
		runLogger.Warnf("%d sink failures during the run", len(result.Failures))
	}
	runLogger.Info("clean exit")
	return result
}
