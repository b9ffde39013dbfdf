package util

import (
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

// ListFiles lists non-dir files or first level files under the directories in the given path pattern
func ListFiles(directoryOrFilePattern string) ([]string, error) {
	inputList, gerr := filepath.Glob(directoryOrFilePattern)
	if gerr != nil {
		return nil, gerr
	}
	pathList := make([]string, 0, len(inputList)*2+10)
	for _, input := range inputList {
		stat, serr := os.Stat(input)
		if serr != nil {
			return nil, serr
		}
		if stat.IsDir() {
			fileList, rerr := os.ReadDir(input)
			if rerr != nil {
				return nil, rerr
			}
			for _, file := range fileList {
				pathList = append(pathList, filepath.Join(input, file.Name()))
			}
		} else {
			pathList = append(pathList, input)
		}
	}
	sort.Strings(pathList)
	return pathList, nil
}

// StatFileAt queries the stat of an existing file in given directory
func StatFileAt(dir *os.File, filename string) (unix.Stat_t, error) {
	var stat unix.Stat_t
	err := unix.Fstatat(int(dir.Fd()), filename, &stat, 0)
	return stat, err
}

// UnlinkFileAt unlinks an existing file in given directory
func UnlinkFileAt(dir *os.File, filename string) error {
	return unix.Unlinkat(int(dir.Fd()), filename, 0)
}
