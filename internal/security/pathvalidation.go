// Package security validates user-supplied file paths before they touch the
// filesystem. The web UI lets a browser name which weather image to inspect,
// so every such name must stay inside the configured image directory.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePathWithinDirectory rejects paths that resolve outside safeDir,
// including symlink tricks for paths that already exist on disk.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("resolve safe directory: %w", err)
	}

	// Resolve symlinks where possible. EvalSymlinks fails for paths that do
	// not exist yet; those fall back to the lexical form, which the Rel
	// check below still covers.
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}
	if resolved, err := filepath.EvalSymlinks(absSafeDir); err == nil {
		absSafeDir = resolved
	}

	rel, err := filepath.Rel(absSafeDir, absPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s escapes %s", filePath, safeDir)
	}
	return nil
}

// ValidateImageName checks a user-supplied display image name: it must be a
// bare file name that stays inside dir.
func ValidateImageName(name, dir string) error {
	if name == "" {
		return fmt.Errorf("empty image name")
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("image name %q must be a bare file name", name)
	}
	return ValidatePathWithinDirectory(filepath.Join(dir, name), dir)
}
