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

package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "toolfence/internal/errors"
	"toolfence/internal/paths"
)

// ListDirectory enumerates the immediate children of a directory under root,
// one line per entry, sorted by name. This operation never accepts an
// absolute directory argument. Entries that fail to stat (removed
// mid-listing, broken symlinks) are skipped rather than aborting the whole
// listing. A missing target and a non-directory target produce the same
// error text.
func ListDirectory(root, directory string) (string, error) {
	if directory == "" {
		directory = "."
	}
	if filepath.IsAbs(directory) {
		return "", apperrors.New(apperrors.CodeValidation,
			"`directory` must be a relative path within the working_directory")
	}

	rootResolved, err := paths.ResolveRoot(root)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExecution, "resolving working directory", err)
	}
	target, err := paths.Resolve(rootResolved, directory)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExecution, "resolving path", err)
	}
	if !paths.HasPathPrefix(target, rootResolved) {
		return "", apperrors.Newf(apperrors.CodeContainment,
			"Cannot list %q as it is outside the permitted working directory", directory)
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return "", apperrors.Newf(apperrors.CodeNotFound, "%q is not a directory", directory)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExecution, "listing directory", err)
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		st, err := os.Stat(filepath.Join(target, entry.Name()))
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: file_size=%d bytes, is_dir=%v",
			entry.Name(), st.Size(), st.IsDir()))
	}

	return strings.Join(lines, "\n"), nil
}
