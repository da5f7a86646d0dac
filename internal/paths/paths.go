// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package paths resolves caller-supplied paths against a sandbox root and
// decides containment. All comparisons happen on symlink-resolved absolute
// paths; the pre-resolution join is never trusted.
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ValidatePathString validates raw path input before resolution.
func ValidatePathString(path string, maxLen int) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.IndexByte(path, 0) != -1 {
		return fmt.Errorf("path contains null byte")
	}
	if !utf8.ValidString(path) {
		return fmt.Errorf("path is not valid UTF-8")
	}
	if maxLen > 0 && len(path) > maxLen {
		return fmt.Errorf("path exceeds maximum length of %d characters", maxLen)
	}
	return nil
}

// ResolveRoot canonicalizes a sandbox root directory, which must exist.
// The root may itself be a symlink; containment checks compare against the
// resolved form.
func ResolveRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid root directory: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root directory: %v", err)
	}
	return resolved, nil
}

// Resolve joins candidate onto root and canonicalizes the result. An absolute
// candidate stands alone instead of being joined. The final path components
// need not exist; only the existing ancestor chain is resolved through
// symlinks, and the remainder is appended lexically.
func Resolve(root, candidate string) (string, error) {
	joined := candidate
	if !filepath.IsAbs(candidate) {
		joined = filepath.Join(root, candidate)
	}
	return ResolveLenient(joined)
}

// ResolveLenient canonicalizes a path that may not fully exist. Symlinks in
// the longest existing ancestor are followed; missing trailing components are
// joined back on afterwards. This is what allows write targets that do not
// exist yet to still be containment-checked on their real parent.
func ResolveLenient(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %v", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to resolve path: %v", err)
	}

	// Walk up to the nearest existing ancestor, then reattach the missing
	// suffix. filepath.Join cleans the result, collapsing any "." or ".."
	// left in the non-existent tail.
	prefix := abs
	var suffix []string
	for {
		parent := filepath.Dir(prefix)
		if parent == prefix {
			return abs, nil
		}
		suffix = append([]string{filepath.Base(prefix)}, suffix...)
		prefix = parent

		resolved, err := filepath.EvalSymlinks(prefix)
		if err == nil {
			return filepath.Join(append([]string{resolved}, suffix...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to resolve path: %v", err)
		}
	}
}

// HasPathPrefix returns true when path equals base or sits below it. The
// comparison is segment-wise, so "/workdir2" is not inside "/workdir".
func HasPathPrefix(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)))
}
