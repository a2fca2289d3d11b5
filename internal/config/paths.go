package config

import (
	"os"
	"path/filepath"
	"strings"
)

// expandHome expands a leading '~' to the user's home directory. On
// lookup failure the path is returned untouched; the consumer will fail
// with a clearer error when it opens the path.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}
