// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PersistentBuildDir returns <dataDir>/dockerfiles/<imageID>, creating it if needed.
func PersistentBuildDir(dataDir, imageID string) (string, error) {
	if dataDir == "" || imageID == "" {
		return "", errors.New("data directory and image id must be non-empty")
	}
	dir := filepath.Join(dataDir, "dockerfiles", imageID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create build directory: %w", err)
	}
	return dir, nil
}

// TempBuildDir creates a fresh temporary directory under parent (the system
// temp directory when parent is empty). The returned cleanup removes it and is
// safe to call more than once.
func TempBuildDir(parent string) (dir string, cleanup func(), err error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", nil, fmt.Errorf("failed to create build directory parent: %w", err)
		}
	}

	dir, err = os.MkdirTemp(parent, "contenv-build-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	cleanup = func() {
		_ = os.RemoveAll(dir) // Best-effort; the directory lives under a temp root
	}
	return dir, cleanup, nil
}
