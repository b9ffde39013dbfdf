package exportfile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/defs"
	"github.com/relex/logcat-agent/util"
	"golang.org/x/exp/slices"
)

// Cleanup strategies
const (
	StrategyKeepLastFiles          = "keepLastFiles"
	StrategyDeleteOlderThanMinutes = "deleteOlderThanMinutes"
	StrategyNone                   = "none"
)

const (
	defaultKeepLastFiles    = 5
	defaultOlderThanMinutes = 60
)

// ErrMarkerMissing is returned when an export dir doesn't carry the marker file
var ErrMarkerMissing = errors.New("export marker is missing")

// CleanupConfig selects the strategy to delete old exported files and its threshold
//
// Threshold <= 0 means the default threshold of the strategy
type CleanupConfig struct {
	Strategy  string `yaml:"strategy"`
	Threshold int    `yaml:"threshold"`
}

// ExportedFile is a candidate of cleanup
type ExportedFile struct {
	Name    string
	ModTime time.Time
}

// CleanupStrategy selects files to delete
type CleanupStrategy func(files []ExportedFile, threshold int, now time.Time) []ExportedFile

var cleanupStrategies = map[string]CleanupStrategy{
	StrategyKeepLastFiles:          KeepLastFiles,
	StrategyDeleteOlderThanMinutes: DeleteOlderThanMinutes,
	StrategyNone:                   func([]ExportedFile, int, time.Time) []ExportedFile { return nil },
}

// Verify checks the strategy name
func (cfg CleanupConfig) Verify() error {
	if _, found := cleanupStrategies[cfg.Strategy]; !found {
		return fmt.Errorf("unsupported cleanup strategy '%s'", cfg.Strategy)
	}
	return nil
}

// KeepLastFiles selects all but the newest N files by modification time, 5 by default
func KeepLastFiles(files []ExportedFile, threshold int, now time.Time) []ExportedFile {
	limit := threshold
	if limit <= 0 {
		limit = defaultKeepLastFiles
	}
	if len(files) <= limit {
		return nil
	}
	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(a, b ExportedFile) bool {
		if a.ModTime.Equal(b.ModTime) {
			return a.Name > b.Name
		}
		return a.ModTime.After(b.ModTime)
	})
	return sorted[limit:]
}

// DeleteOlderThanMinutes selects files modified more than N minutes ago, 60 by default
func DeleteOlderThanMinutes(files []ExportedFile, threshold int, now time.Time) []ExportedFile {
	minutes := threshold
	if minutes <= 0 {
		minutes = defaultOlderThanMinutes
	}
	cutoff := now.Add(-time.Duration(minutes) * time.Minute)
	var selected []ExportedFile
	for _, f := range files {
		if f.ModTime.Before(cutoff) {
			selected = append(selected, f)
		}
	}
	return selected
}

// cleanupDir applies the cleanup strategy to regular files in dirPath, returns the number of deleted files
//
// Nothing is deleted if the marker file is missing
func cleanupDir(parentLogger logger.Logger, dirPath string, config CleanupConfig, now time.Time) (int, error) {
	strategy, found := cleanupStrategies[config.Strategy]
	if !found {
		return 0, fmt.Errorf("unsupported cleanup strategy '%s'", config.Strategy)
	}

	dir, oerr := os.Open(dirPath)
	if oerr != nil {
		return 0, oerr
	}
	defer dir.Close()

	if _, err := util.StatFileAt(dir, defs.ExportMarkerFileName); err != nil {
		parentLogger.Errorf("safety abort: marker %s is missing in %s", defs.ExportMarkerFileName, dirPath)
		return 0, fmt.Errorf("%w: %s", ErrMarkerMissing, dirPath)
	}

	entries, rerr := dir.ReadDir(-1)
	if rerr != nil {
		return 0, fmt.Errorf("failed to list %s: %w", dirPath, rerr)
	}
	files := make([]ExportedFile, 0, len(entries))
	for _, entry := range entries {
		if entry.Name() == defs.ExportMarkerFileName || !entry.Type().IsRegular() {
			continue
		}
		stat, serr := util.StatFileAt(dir, entry.Name())
		if serr != nil {
			parentLogger.Warnf("failed to stat '%s': %s", entry.Name(), serr.Error())
			continue
		}
		files = append(files, ExportedFile{
			Name:    entry.Name(),
			ModTime: time.Unix(stat.Mtim.Unix()),
		})
	}

	numDeleted := 0
	for _, f := range strategy(files, config.Threshold, now) {
		if err := util.UnlinkFileAt(dir, f.Name); err != nil {
			parentLogger.Warnf("failed to delete '%s': %s", f.Name, err.Error())
			continue
		}
		numDeleted++
	}
	if numDeleted > 0 {
		parentLogger.Infof("deleted %d of %d exported files by %s(%d)", numDeleted, len(files), config.Strategy, config.Threshold)
	}
	return numDeleted, nil
}
