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

//go:build unix

package tools

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	apperrors "toolfence/internal/errors"
)

// shOptions runs .py fixtures through sh, so the tests do not depend on a
// Python installation.
func shOptions(timeout time.Duration) ScriptOptions {
	return ScriptOptions{Interpreter: "sh", Timeout: timeout}
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh unavailable: %v", err)
	}
}

func TestRunScriptStdout(t *testing.T) {
	requireSh(t)
	root := t.TempDir()
	writeTestFile(t, root, "hello.py", "echo hello\n")

	got, err := RunScript(context.Background(), root, "hello.py", nil, shOptions(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "STDOUT: hello\nSTDERR:"
	if got != want {
		t.Fatalf("output mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestRunScriptArgsAndCwd(t *testing.T) {
	requireSh(t)
	root := t.TempDir()
	// Prints its first argument and the basename-relative file check proves
	// the interpreter runs with the sandbox as working directory.
	writeTestFile(t, root, "args.py", "echo \"arg=$1\"\ntest -f args.py && echo cwd-ok\n")

	got, err := RunScript(context.Background(), root, "args.py", []string{"alpha"}, shOptions(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "arg=alpha") || !strings.Contains(got, "cwd-ok") {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRunScriptStderrAndExitCode(t *testing.T) {
	requireSh(t)
	root := t.TempDir()
	writeTestFile(t, root, "fail.py", "echo boom >&2\nexit 2\n")

	got, err := RunScript(context.Background(), root, "fail.py", nil, shOptions(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "STDOUT:\nSTDERR: boom\nProcess exited with code 2"
	if got != want {
		t.Fatalf("output mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestRunScriptNoOutput(t *testing.T) {
	requireSh(t)
	root := t.TempDir()
	writeTestFile(t, root, "quiet.py", "exit 0\n")

	got, err := RunScript(context.Background(), root, "quiet.py", nil, shOptions(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "No output produced." {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRunScriptNoOutputNonZeroExit(t *testing.T) {
	requireSh(t)
	root := t.TempDir()
	writeTestFile(t, root, "silent_fail.py", "exit 3\n")

	// The emptiness check wins even over a non-zero exit.
	got, err := RunScript(context.Background(), root, "silent_fail.py", nil, shOptions(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "No output produced." {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRunScriptTimeout(t *testing.T) {
	requireSh(t)
	root := t.TempDir()
	writeTestFile(t, root, "slow.py", "sleep 60\n")

	start := time.Now()
	_, err := RunScript(context.Background(), root, "slow.py", nil, shOptions(200*time.Millisecond))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("timeout kill took too long: %s", elapsed)
	}
	if !apperrors.Is(err, apperrors.CodeTimeout) {
		t.Fatalf("expected timeout code, got %v", apperrors.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "process timed out after") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestRunScriptMissingFile(t *testing.T) {
	requireSh(t)
	root := t.TempDir()

	_, err := RunScript(context.Background(), root, "ghost.py", nil, shOptions(0))
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != `File "ghost.py" not found.` {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunScriptWrongExtension(t *testing.T) {
	requireSh(t)
	root := t.TempDir()
	writeTestFile(t, root, "script.sh", "echo hi\n")

	_, err := RunScript(context.Background(), root, "script.sh", nil, shOptions(0))
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != `"script.sh" is not a Python file.` {
		t.Fatalf("unexpected error: %v", err)
	}
	if !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation code, got %v", apperrors.CodeOf(err))
	}
}

func TestRunScriptEscape(t *testing.T) {
	requireSh(t)
	root := t.TempDir()

	_, err := RunScript(context.Background(), root, "../outside.py", nil, shOptions(0))
	if err == nil {
		t.Fatal("expected containment error")
	}
	want := `Cannot execute "../outside.py" as it is outside the permitted working directory`
	if err.Error() != want {
		t.Fatalf("error mismatch:\n got %q\nwant %q", err.Error(), want)
	}
}
