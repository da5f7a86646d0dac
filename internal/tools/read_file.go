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
	"unicode/utf8"

	apperrors "toolfence/internal/errors"
	"toolfence/internal/paths"
)

// ReadFileContent reads a regular file under root, truncating at maxChars
// characters. The truncation marker is appended directly after the cut
// content with no separator, and only when truncation occurred.
func ReadFileContent(root, filePath string, maxChars int) (string, error) {
	rootResolved, err := paths.ResolveRoot(root)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExecution, "resolving working directory", err)
	}
	target, err := paths.Resolve(rootResolved, filePath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExecution, "resolving path", err)
	}
	if !paths.HasPathPrefix(target, rootResolved) {
		return "", apperrors.Newf(apperrors.CodeContainment,
			"Cannot read %q as it is outside the permitted working directory", filePath)
	}

	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return "", apperrors.Newf(apperrors.CodeNotFound,
			"File not found or is not a regular file: %q", filePath)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExecution, "reading file", err)
	}
	if !utf8.Valid(data) {
		return "", apperrors.New(apperrors.CodeExecution, "decoding file: content is not valid UTF-8")
	}

	content := string(data)
	if maxChars > 0 && utf8.RuneCountInString(content) > maxChars {
		runes := []rune(content)
		marker := fmt.Sprintf("[...File %q truncated at %d characters]", filePath, maxChars)
		return string(runes[:maxChars]) + marker, nil
	}
	return content, nil
}
