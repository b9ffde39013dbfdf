package exportfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/xattr"
	"github.com/relex/gotils/logger"
	"github.com/relex/logcat-agent/defs"
)

// XattrExportRoot is set on export dirs created by the sink, holding the absolute dir path
const XattrExportRoot = "user.logcat.exportRoot"

// ensureExportDir creates the export dir with marker if it doesn't exist, or verifies the marker of an existing dir
func ensureExportDir(parentLogger logger.Logger, dirPath string) error {
	stat, serr := os.Stat(dirPath)
	switch {
	case errors.Is(serr, os.ErrNotExist):
		return createExportDir(parentLogger, dirPath)
	case serr != nil:
		return serr
	case !stat.IsDir():
		return fmt.Errorf("export path %s is not a directory", dirPath)
	}

	if _, err := os.Stat(filepath.Join(dirPath, defs.ExportMarkerFileName)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMarkerMissing, dirPath)
		}
		return err
	}
	return nil
}

func createExportDir(parentLogger logger.Logger, dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	marker, merr := os.OpenFile(filepath.Join(dirPath, defs.ExportMarkerFileName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if merr != nil && !errors.Is(merr, os.ErrExist) {
		return fmt.Errorf("failed to create export marker: %w", merr)
	}
	if marker != nil {
		marker.Close()
	}

	absPath, aerr := filepath.Abs(dirPath)
	if aerr != nil {
		absPath = dirPath
	}
	// xattr is optional, e.g. tmpfs may not support user attributes
	if err := xattr.Set(dirPath, XattrExportRoot, []byte(absPath)); err != nil {
		parentLogger.Warnf("failed to label export dir: %s", err.Error())
	}
	parentLogger.Infof("created export dir %s", dirPath)
	return nil
}
