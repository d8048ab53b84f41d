package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates path and its parents with the given mode.
// An existing non-directory at path is an error.
func EnsureDir(path string, mode os.FileMode) error {
	if path == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	if err := os.MkdirAll(path, mode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// EnsureFileDir creates the parent directory of filePath.
func EnsureFileDir(filePath string, mode os.FileMode) error {
	return EnsureDir(filepath.Dir(filePath), mode)
}

// DirSize walks dir and returns the summed size and number of regular files.
// A missing directory yields zero values.
func DirSize(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.WalkDir(dir, func(_ string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		size += info.Size()
		count++
		return nil
	})
	if err != nil {
		err = fmt.Errorf("error walking directory %s: %w", dir, err)
	}
	return size, count, err
}
