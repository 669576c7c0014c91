package preflight

import (
	"fmt"
	"os"
	"path/filepath"
)

// FreeDiskSpace returns the free bytes available to this process on the
// filesystem containing path. If path does not exist yet, the nearest
// existing parent directory is checked instead, so the output directory can
// be probed before it is created.
func FreeDiskSpace(path string) (int64, error) {
	if path == "" {
		path = "."
	}
	for {
		_, err := os.Stat(path)
		if err == nil {
			break
		}
		if !os.IsNotExist(err) {
			return 0, fmt.Errorf("preflight: cannot access %s: %w", path, err)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return 0, fmt.Errorf("preflight: no existing parent for %s", path)
		}
		path = parent
	}

	free, err := freeDiskSpace(path)
	if err != nil {
		return 0, fmt.Errorf("preflight: disk space for %s: %w", path, err)
	}
	return free, nil
}
