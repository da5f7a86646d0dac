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
	apperrors "toolfence/internal/errors"
	"toolfence/internal/paths"
)

const maxWorkdirLen = 4096

// resolveWorkingDirectory validates the optional working_directory argument
// and pins it inside the registry's outer root. The result becomes the inner
// sandbox root for the dispatched operation; without the argument the outer
// root itself is used.
func (r *Registry) resolveWorkingDirectory(args map[string]interface{}) (string, error) {
	raw, ok := stringArg(args, "working_directory")
	if !ok || raw == "" {
		return r.root, nil
	}

	if err := paths.ValidatePathString(raw, maxWorkdirLen); err != nil {
		return "", apperrors.Wrap(apperrors.CodeValidation, "invalid working_directory", err)
	}

	resolved, err := paths.Resolve(r.root, raw)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExecution, "resolving working_directory", err)
	}
	if !paths.HasPathPrefix(resolved, r.root) {
		return "", apperrors.New(apperrors.CodeContainment,
			"working_directory must remain inside the repository root.")
	}
	return resolved, nil
}
