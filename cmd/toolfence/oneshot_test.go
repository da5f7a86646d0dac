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

package main

import (
	"testing"

	"toolfence/internal/chat"
)

func TestRenderOneShotPlain(t *testing.T) {
	got := renderOneShot("list files", "here you go", nil, chat.TokenUsage{}, false)
	want := "here you go\n"
	if got != want {
		t.Fatalf("output mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestRenderOneShotWithToolCalls(t *testing.T) {
	calls := []string{
		"TOOL_CALL get_files_info ARGS map[]",
		"TOOL_CALL get_file_content ARGS map[file_path:main.py]",
	}
	got := renderOneShot("inspect", "done", calls, chat.TokenUsage{}, false)
	want := "Tool calls executed:\n" +
		"- TOOL_CALL get_files_info ARGS map[]\n" +
		"- TOOL_CALL get_file_content ARGS map[file_path:main.py]\n" +
		"done\n"
	if got != want {
		t.Fatalf("output mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestRenderOneShotVerbose(t *testing.T) {
	got := renderOneShot("hi", "hello", nil, chat.TokenUsage{PromptTokens: 11, ResponseTokens: 4}, true)
	want := "User prompt: hi\n" +
		"hello\n" +
		"\n--- Token Usage ---\n" +
		"Prompt tokens: 11\n" +
		"Response tokens: 4\n" +
		"-------------------\n"
	if got != want {
		t.Fatalf("output mismatch:\n got %q\nwant %q", got, want)
	}
}
