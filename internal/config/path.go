package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading "~" to the home directory and makes path absolute. An empty path stays empty.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if home, _ := os.UserHomeDir(); home != "" {
		switch {
		case path == "~" || path == "~/" || path == `~\`:
			path = home
		case strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`):
			path = filepath.Join(home, path[2:])
		}
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}
