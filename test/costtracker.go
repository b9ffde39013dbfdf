package test

import (
	"runtime"
	"syscall"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/util"
)

// CostTracker tracks CPU usage and memory allocations of the whole process
type CostTracker struct {
	startRealTime   time.Time
	startUserTime   time.Time
	startSystemTime time.Time
	startMallocs    uint64
}

// CostReport contains measurements since the tracker was started
type CostReport struct {
	RealTime      time.Duration
	UserTime      time.Duration
	SystemTime    time.Duration
	NumHeapAllocs uint64
	GCCPUFraction float64
}

// StartCostTracking runs GC and starts tracking from now
func StartCostTracking() *CostTracker {
	runtime.GC()
	userTime, systemTime := getCPUTimes()
	return &CostTracker{
		startRealTime:   time.Now(),
		startUserTime:   userTime,
		startSystemTime: systemTime,
		startMallocs:    getMemStats().Mallocs,
	}
}

// Report reports measurements since StartCostTracking
func (ct *CostTracker) Report() CostReport {
	realTime := time.Since(ct.startRealTime)
	runtime.GC()
	userTime, systemTime := getCPUTimes()
	memStats := getMemStats()
	return CostReport{
		RealTime:      realTime,
		UserTime:      userTime.Sub(ct.startUserTime),
		SystemTime:    systemTime.Sub(ct.startSystemTime),
		NumHeapAllocs: memStats.Mallocs - ct.startMallocs,
		GCCPUFraction: memStats.GCCPUFraction,
	}
}

func getCPUTimes() (time.Time, time.Time) {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		logger.Panic("failed to get resource usage: ", err)
	}
	return util.TimeFromTimeval(rusage.Utime), util.TimeFromTimeval(rusage.Stime)
}

func getMemStats() runtime.MemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	return memStats
}
