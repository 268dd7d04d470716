// Package security guards the places where identifiers from the flight
// catalogue end up in filesystem paths.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePathWithinDirectory rejects filePath if, after cleaning and
// resolving symlinks, it would land outside safeDir. Paths that do not
// exist yet are checked through their nearest existing parent, so a
// symlinked directory cannot be used to escape.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	target, err := canonical(filePath, false)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	root, err := canonical(safeDir, true)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory: %w", err)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}
	return nil
}

// canonical returns the absolute, symlink-free form of p. With mustExist
// unset, a missing tail is re-attached to its deepest existing ancestor.
func canonical(p string, mustExist bool) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	} else if mustExist {
		return "", err
	}

	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			rest, _ := filepath.Rel(dir, abs)
			return filepath.Join(resolved, rest), nil
		}
		if dir == filepath.Dir(dir) {
			return abs, nil
		}
	}
}

// ValidateExportPath accepts report output paths under the working
// directory or the system temp directory.
func ValidateExportPath(filePath string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	allowed := []string{cwd, os.TempDir()}
	for _, dir := range allowed {
		if ValidatePathWithinDirectory(filePath, dir) == nil {
			return nil
		}
	}
	return fmt.Errorf("path must be within one of the allowed directories: %v", allowed)
}

// ValidateFlightID accepts the numeric flight identifiers of the contest
// server. They are used verbatim as file names in the track archive.
func ValidateFlightID(id string) error {
	if id == "" {
		return fmt.Errorf("empty flight id")
	}
	if len(id) > 20 {
		return fmt.Errorf("flight id too long: %d characters", len(id))
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid flight id %q: only digits allowed", id)
		}
	}
	return nil
}

// SanitizeFilename makes a safe filename from an arbitrary string such as
// a pilot name. Anything other than ASCII letters, digits, dot, underscore
// or dash becomes a single underscore; the result is capped at 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case r < 128 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '_' || r == '-'):
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
