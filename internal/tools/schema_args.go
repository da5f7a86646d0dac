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

type getFileContentArgs struct {
	FilePath         string `json:"file_path" jsonschema:"description=Path to the file to read relative to the working directory"`
	WorkingDirectory string `json:"working_directory,omitempty" jsonschema:"description=Directory the path is resolved against (default: repository root)"`
}

type getFilesInfoArgs struct {
	Directory        string `json:"directory,omitempty" jsonschema:"description=Relative directory to list (default: the working directory itself)"`
	WorkingDirectory string `json:"working_directory,omitempty" jsonschema:"description=Directory the path is resolved against (default: repository root)"`
}

type writeFileArgs struct {
	FilePath         string `json:"file_path" jsonschema:"description=Path to the file to write relative to the working directory"`
	Content          string `json:"content" jsonschema:"description=Content to write to the file"`
	WorkingDirectory string `json:"working_directory,omitempty" jsonschema:"description=Directory the path is resolved against (default: repository root)"`
}

type runPythonFileArgs struct {
	FilePath         string   `json:"file_path" jsonschema:"description=Path to the Python file to execute relative to the working directory"`
	Args             []string `json:"args,omitempty" jsonschema:"description=Command-line arguments passed to the script"`
	WorkingDirectory string   `json:"working_directory,omitempty" jsonschema:"description=Directory the path is resolved against (default: repository root)"`
}
