package exportfile

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/defs"
	"github.com/stretchr/testify/assert"
)

func exportedFileNames(files []ExportedFile) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func makeExportedFiles(now time.Time, count int) []ExportedFile {
	files := make([]ExportedFile, 0, count)
	for i := 0; i < count; i++ {
		files = append(files, ExportedFile{
			Name:    string(rune('a' + i)),
			ModTime: now.Add(-time.Duration(i*20) * time.Minute),
		})
	}
	return files
}

func TestKeepLastFiles(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	files := makeExportedFiles(now, 8) // a (newest) ... h (oldest)

	assert.Equal(t, []string{"c", "d", "e", "f", "g", "h"}, exportedFileNames(KeepLastFiles(files, 2, now)))
	assert.Equal(t, []string{"f", "g", "h"}, exportedFileNames(KeepLastFiles(files, 0, now)))
	assert.Empty(t, KeepLastFiles(files, 8, now))
	assert.Empty(t, KeepLastFiles(nil, 1, now))
	assert.Equal(t, "a", files[0].Name, "input is unchanged")
}

func TestDeleteOlderThanMinutes(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	files := makeExportedFiles(now, 8) // 0, 20, 40 ... 140 minutes old

	assert.Equal(t, []string{"d", "e", "f", "g", "h"}, exportedFileNames(DeleteOlderThanMinutes(files, 50, now)))
	assert.Equal(t, []string{"e", "f", "g", "h"}, exportedFileNames(DeleteOlderThanMinutes(files, -1, now)))
	assert.Empty(t, DeleteOlderThanMinutes(files, 1000, now))
}

func TestCleanupDir(t *testing.T) {
	lg := logger.WithField("test", t.Name())
	dir := t.TempDir()
	now := time.Now()
	for i, name := range []string{"new.log", "mid.log", "old.log", "older.log"} {
		path := filepath.Join(dir, name)
		assert.Nil(t, os.WriteFile(path, []byte(name), 0o644))
		mtime := now.Add(-time.Duration(i) * time.Hour)
		assert.Nil(t, os.Chtimes(path, mtime, mtime))
	}
	assert.Nil(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	n, err := cleanupDir(lg, dir, CleanupConfig{Strategy: StrategyKeepLastFiles, Threshold: 1}, now)
	assert.ErrorIs(t, err, ErrMarkerMissing)
	assert.Equal(t, 0, n)
	assert.Len(t, listDir(t, dir), 5)

	assert.Nil(t, os.WriteFile(filepath.Join(dir, defs.ExportMarkerFileName), nil, 0o644))
	n, err = cleanupDir(lg, dir, CleanupConfig{Strategy: StrategyDeleteOlderThanMinutes, Threshold: 150}, now)
	assert.Nil(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{defs.ExportMarkerFileName, "mid.log", "new.log", "old.log", "subdir"}, listDir(t, dir))

	n, err = cleanupDir(lg, dir, CleanupConfig{Strategy: StrategyKeepLastFiles, Threshold: 1}, now)
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{defs.ExportMarkerFileName, "new.log", "subdir"}, listDir(t, dir))

	n, err = cleanupDir(lg, dir, CleanupConfig{Strategy: StrategyNone}, now)
	assert.Nil(t, err)
	assert.Equal(t, 0, n)

	_, err = cleanupDir(lg, dir, CleanupConfig{Strategy: "bogus"}, now)
	assert.EqualError(t, err, "unsupported cleanup strategy 'bogus'")
}

func TestSettingsHolderConcurrentUpdate(t *testing.T) {
	holder := NewSettingsHolder(DefaultSettings("/tmp/x"))
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				holder.Update(func(current Settings) Settings {
					current.Cleanup.Threshold++
					return current
				})
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	assert.Equal(t, 402, holder.Get().Cleanup.Threshold)
	assert.Equal(t, "/tmp/x", holder.Get().Dir)
}
