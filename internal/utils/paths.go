// Package utils holds small helpers shared by gitix packages.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirPerms is used when creating directories for log and config files.
const DefaultDirPerms = 0o750

// ExpandPath expands a leading ~ and any environment variables in path.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}
