// Package security guards file references read from map descriptors.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a relative reference resolves outside its
// base directory.
var ErrPathEscape = errors.New("path escapes base directory")

// ValidatePathWithinDirectory reports whether filePath, once cleaned and
// with symlinks in its existing prefix resolved, lies inside dir.
func ValidatePathWithinDirectory(filePath, dir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filePath, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	canonicalDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}

	rel, err := filepath.Rel(canonicalDir, canonicalize(absPath))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathEscape, filePath)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathEscape, filePath, dir)
	}
	return nil
}

// canonicalize resolves symlinks in the longest existing prefix of p.
func canonicalize(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rest, _ := filepath.Rel(dir, p)
			return filepath.Join(resolved, rest)
		}
		if dir == filepath.Dir(dir) {
			return p
		}
	}
}

// ResolveReference resolves ref as named inside the file at basePath.
// Absolute references are returned cleaned. Relative references are joined
// to basePath's directory and must not leave it.
func ResolveReference(basePath, ref string) (string, error) {
	if ref == "" {
		return "", errors.New("empty file reference")
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref), nil
	}
	dir := filepath.Dir(filepath.Clean(basePath))
	resolved := filepath.Join(dir, ref)
	if err := ValidatePathWithinDirectory(resolved, dir); err != nil {
		return "", err
	}
	return resolved, nil
}
