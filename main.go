package main

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/cmd"
)

var version string

func main() {
	logger.Infof("version: %s", version)
	logger.Infof("GOMAXPROCS: %d", runtime.GOMAXPROCS(0))

	registerInfoMetric()

	cmd.Execute()
}

func registerInfoMetric() {
	opts := prometheus.GaugeOpts{}
	opts.Name = "logcat_agent_info"
	opts.Help = "logcat-agent application information"
	gauge := prometheus.NewGaugeVec(opts, []string{"version", "goversion"})
	gauge.WithLabelValues(version, runtime.Version()).Set(1)
	prometheus.MustRegister(gauge)
}
