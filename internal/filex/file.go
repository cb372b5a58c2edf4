// Package filex has the small filesystem helpers the CLI uses for downloads.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir if needed and returns its absolute path. A relative
// dir is resolved against the working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// SafeName reduces a server-provided file name to its base name. Names that
// would resolve to the directory itself or its parent become fallback.
func SafeName(name, fallback string) string {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if base == "/" || base == "." || base == ".." || base == "" {
		return fallback
	}
	return base
}

// CreateIn creates (or truncates) SafeName(name) inside dir and returns the
// open file and its path.
func CreateIn(dir, name, fallback string) (*os.File, string, error) {
	path := filepath.Join(dir, SafeName(name, fallback))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return nil, "", fmt.Errorf("create %s: %w", path, err)
	}
	return f, path, nil
}
