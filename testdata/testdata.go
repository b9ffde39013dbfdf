// Package testdata provides access to shared sample logs and config for testing
package testdata

import (
	"path/filepath"
	"runtime"
)

// Facts of the sample logcat capture
const (
	SampleLogcatItems    = 10
	SampleLogcatWarnings = 4 // warning and above
	SampleLogcatFirstTag = "ActivityManager"
)

var absoluteDirPath string

func init() {
	_, thisFile, _, _ := runtime.Caller(0)
	absoluteDirPath = filepath.Dir(thisFile)
}

// GetConfigPath returns the path of sample config
func GetConfigPath() string {
	return filepath.Join(absoluteDirPath, "config_sample.yml")
}

// GetSampleLogcatPath returns the path of a short capture from "adb logcat --binary"
func GetSampleLogcatPath() string {
	return filepath.Join(absoluteDirPath, "development", "sample-logcat.bin")
}
