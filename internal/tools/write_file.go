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

// WriteFileContent creates or fully overwrites a file under root. Missing
// parent directories are not created; the open fault surfaces as an
// execution error. The success message counts characters, not bytes, so it
// stays stable under multi-byte content.
func WriteFileContent(root, filePath, content string) (string, error) {
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
			"Cannot write to %q as it is outside the permitted working directory", filePath)
	}

	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return "", apperrors.Wrap(apperrors.CodeExecution, "writing file", err)
	}

	return fmt.Sprintf("Successfully wrote to %q (%d characters written)",
		filePath, utf8.RuneCountInString(content)), nil
}
