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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	apperrors "toolfence/internal/errors"
	"toolfence/internal/paths"
)

const (
	// ScriptExtension is the only file extension the runner accepts.
	ScriptExtension = ".py"

	// DefaultInterpreter is resolved through the host's search path. It is
	// an environment-dependent choice and overridable per registry.
	DefaultInterpreter = "python3"

	// DefaultScriptTimeout bounds script wall-clock time.
	DefaultScriptTimeout = 30 * time.Second
)

// ScriptOptions configures a single script execution.
type ScriptOptions struct {
	Interpreter string
	Timeout     time.Duration
}

// ExecutionOutcome captures a finished (or killed) script process.
type ExecutionOutcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// RunScript executes a Python script under root with the interpreter's
// working directory set to the resolved root, so relative paths inside the
// script resolve against the sandbox. Stdout and stderr are captured fully,
// not streamed. On timeout the whole process group is killed.
func RunScript(ctx context.Context, root, filePath string, args []string, opts ScriptOptions) (string, error) {
	interpreter := opts.Interpreter
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}

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
			"Cannot execute %q as it is outside the permitted working directory", filePath)
	}

	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return "", apperrors.Newf(apperrors.CodeNotFound, "File %q not found.", filePath)
	}
	if !strings.HasSuffix(target, ScriptExtension) {
		return "", apperrors.Newf(apperrors.CodeValidation, "%q is not a Python file.", filePath)
	}

	outcome, err := executeScript(ctx, rootResolved, target, args, interpreter, timeout)
	if err != nil {
		return "", err
	}
	return formatOutcome(outcome), nil
}

func executeScript(ctx context.Context, dir, script string, args []string, interpreter string, timeout time.Duration) (ExecutionOutcome, error) {
	argv := append([]string{script}, args...)
	cmd := exec.Command(interpreter, argv...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return ExecutionOutcome{}, apperrors.Wrap(apperrors.CodeExecution, "executing Python file", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		_ = killProcessGroup(cmd)
		<-done
		return ExecutionOutcome{TimedOut: true},
			apperrors.Wrap(apperrors.CodeExecution, "executing Python file", ctx.Err())

	case <-timer.C:
		// Hard kill of the whole group: a polite signal would let grandchild
		// processes keep the streams open past the deadline.
		_ = killProcessGroup(cmd)
		<-done
		return ExecutionOutcome{TimedOut: true},
			apperrors.Newf(apperrors.CodeTimeout, "executing Python file: process timed out after %s", timeout)

	case err := <-done:
		outcome := ExecutionOutcome{
			Stdout: strings.TrimSpace(stdout.String()),
			Stderr: strings.TrimSpace(stderr.String()),
		}
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return outcome, apperrors.Wrap(apperrors.CodeExecution, "executing Python file", err)
			}
			outcome.ExitCode = exitErr.ExitCode()
		}
		return outcome, nil
	}
}

// formatOutcome renders the captured process result. The "no output" branch
// wins over the multi-line branch; the exit-code line appears only for a
// non-zero exit.
func formatOutcome(o ExecutionOutcome) string {
	if o.Stdout == "" && o.Stderr == "" {
		return "No output produced."
	}

	lines := make([]string, 0, 3)
	if o.Stdout != "" {
		lines = append(lines, "STDOUT: "+o.Stdout)
	} else {
		lines = append(lines, "STDOUT:")
	}
	if o.Stderr != "" {
		lines = append(lines, "STDERR: "+o.Stderr)
	} else {
		lines = append(lines, "STDERR:")
	}
	if o.ExitCode != 0 {
		lines = append(lines, fmt.Sprintf("Process exited with code %d", o.ExitCode))
	}
	return strings.Join(lines, "\n")
}
