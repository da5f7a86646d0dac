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
	"context"
)

// registerBuiltInTools registers the four file and script tools. Validation
// of string arguments runs before the working directory is resolved, so a
// missing file_path reports as such even when working_directory is bad too.
func registerBuiltInTools(r *Registry) {
	register := func(tool Tool) {
		if err := r.RegisterTool(tool); err != nil {
			panic(err)
		}
	}

	register(&ToolDefinition{
		NameValue:        "get_file_content",
		DescriptionValue: "Read the contents of a file within the working directory. Output is truncated past the configured character cap.",
		ParametersValue:  mustSchemaParametersFor[getFileContentArgs](),
		ExecuteFunc:      r.executeGetFileContent,
		ValidateFunc:     RequireStringArg("file_path", `"file_path" is required.`),
	})

	register(&ToolDefinition{
		NameValue:        "get_files_info",
		DescriptionValue: "List the immediate entries of a directory within the working directory with their sizes.",
		ParametersValue:  mustSchemaParametersFor[getFilesInfoArgs](),
		ExecuteFunc:      r.executeGetFilesInfo,
	})

	register(&ToolDefinition{
		NameValue:        "write_file",
		DescriptionValue: "Create or overwrite a file within the working directory with the given content.",
		ParametersValue:  mustSchemaParametersFor[writeFileArgs](),
		ExecuteFunc:      r.executeWriteFile,
		ValidateFunc: ChainValidation(
			RequireStringArg("file_path", `Both "file_path" and "content" are required.`),
			RequireStringPresent("content", `Both "file_path" and "content" are required.`),
		),
	})

	register(&ToolDefinition{
		NameValue:        "run_python_file",
		DescriptionValue: "Execute a Python file within the working directory and return its captured output.",
		ParametersValue:  mustSchemaParametersFor[runPythonFileArgs](),
		ExecuteFunc:      r.executeRunPythonFile,
		ValidateFunc: ChainValidation(
			RequireStringArg("file_path", `"file_path" is required.`),
			OptionalStringListArg("args"),
		),
	})
}

func (r *Registry) executeGetFileContent(ctx context.Context, args map[string]interface{}) (string, error) {
	workdir, err := r.resolveWorkingDirectory(args)
	if err != nil {
		return "", err
	}
	filePath, _ := stringArg(args, "file_path")
	return ReadFileContent(workdir, filePath, r.limits.MaxReadChars)
}

func (r *Registry) executeGetFilesInfo(ctx context.Context, args map[string]interface{}) (string, error) {
	workdir, err := r.resolveWorkingDirectory(args)
	if err != nil {
		return "", err
	}
	directory, _ := stringArg(args, "directory")
	return ListDirectory(workdir, directory)
}

func (r *Registry) executeWriteFile(ctx context.Context, args map[string]interface{}) (string, error) {
	workdir, err := r.resolveWorkingDirectory(args)
	if err != nil {
		return "", err
	}
	filePath, _ := stringArg(args, "file_path")
	content, _ := stringArg(args, "content")
	return WriteFileContent(workdir, filePath, content)
}

func (r *Registry) executeRunPythonFile(ctx context.Context, args map[string]interface{}) (string, error) {
	workdir, err := r.resolveWorkingDirectory(args)
	if err != nil {
		return "", err
	}
	filePath, _ := stringArg(args, "file_path")
	scriptArgs, _ := stringListArg(args, "args")
	return RunScript(ctx, workdir, filePath, scriptArgs, ScriptOptions{
		Interpreter: r.interpreter,
		Timeout:     r.timeouts.TimeoutForTool("run_python_file"),
	})
}
