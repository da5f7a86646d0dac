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

package chat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"toolfence/internal/config"
	apperrors "toolfence/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.SandboxRoot = t.TempDir()
	return cfg
}

func newTestSession(t *testing.T, client ChatClient) *Session {
	t.Helper()
	sess, err := NewSessionWithClient(testConfig(t), client)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return sess
}

func TestSessionStartsWithSystemMessage(t *testing.T) {
	sess := newTestSession(t, &MockChatClient{})

	msgs := sess.MessagesSnapshot()
	if len(msgs) != 1 {
		t.Fatalf("expected single system message, got %d", len(msgs))
	}
	if msgs[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("unexpected first role: %s", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "get_file_content") {
		t.Fatal("system prompt must name the tools")
	}
}

func TestGetResponsePlainText(t *testing.T) {
	mock := &MockChatClient{}
	mock.QueueResponse(textResponse("hello there", 12, 7))
	sess := newTestSession(t, mock)

	got, err := sess.GetResponse("hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello there" {
		t.Fatalf("unexpected response: %q", got)
	}

	usage := sess.Usage()
	if usage.PromptTokens != 12 || usage.ResponseTokens != 7 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
	if log := sess.ToolCallLog(); len(log) != 0 {
		t.Fatalf("expected empty tool log, got %v", log)
	}
}

func TestGetResponseExecutesToolCalls(t *testing.T) {
	mock := &MockChatClient{}
	mock.QueueResponse(toolCallResponse(openai.ToolCall{
		ID:   "call-1",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      "write_file",
			Arguments: `{"file_path":"greeting.txt","content":"hello"}`,
		},
	}))
	mock.QueueResponse(textResponse("done", 20, 5))
	sess := newTestSession(t, mock)

	got, err := sess.GetResponse("write a greeting")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Fatalf("unexpected response: %q", got)
	}

	// The tool actually ran inside the sandbox.
	data, err := os.ReadFile(filepath.Join(sess.ToolRegistry.Root(), "greeting.txt"))
	if err != nil {
		t.Fatalf("tool did not write the file: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected file content: %q", data)
	}

	log := sess.ToolCallLog()
	if len(log) != 1 || !strings.HasPrefix(log[0], "TOOL_CALL write_file ARGS ") {
		t.Fatalf("unexpected tool log: %v", log)
	}

	// Second request carries the tool result back to the model.
	if len(mock.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(mock.Requests))
	}
	last := mock.Requests[1].Messages
	toolMsg := last[len(last)-1]
	if toolMsg.Role != openai.ChatMessageRoleTool || toolMsg.ToolCallID != "call-1" {
		t.Fatalf("unexpected tool message: %+v", toolMsg)
	}
	if !strings.Contains(toolMsg.Content, "Successfully wrote to") {
		t.Fatalf("unexpected tool content: %q", toolMsg.Content)
	}
}

func TestGetResponseToolFailureStaysInBand(t *testing.T) {
	mock := &MockChatClient{}
	mock.QueueResponse(toolCallResponse(openai.ToolCall{
		ID:   "call-1",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      "get_file_content",
			Arguments: `{"file_path":"../outside.txt"}`,
		},
	}))
	mock.QueueResponse(textResponse("ok", 1, 1))
	sess := newTestSession(t, mock)

	if _, err := sess.GetResponse("read outside"); err != nil {
		t.Fatalf("tool failure must not surface as session error: %v", err)
	}

	last := mock.Requests[1].Messages
	toolMsg := last[len(last)-1]
	if !strings.HasPrefix(toolMsg.Content, "Error: Cannot read") {
		t.Fatalf("unexpected tool content: %q", toolMsg.Content)
	}

	log := sess.ToolCallLog()
	if len(log) != 1 || !strings.HasPrefix(log[0], "TOOL_CALL get_file_content FAILED: ") {
		t.Fatalf("unexpected tool log: %v", log)
	}
}

func TestGetResponseAPIError(t *testing.T) {
	mock := &MockChatClient{Err: os.ErrDeadlineExceeded}
	sess := newTestSession(t, mock)

	_, err := sess.GetResponse("hi")
	if err == nil {
		t.Fatal("expected API error")
	}
	if !apperrors.Is(err, apperrors.CodeAPI) {
		t.Fatalf("expected api code, got %v", apperrors.CodeOf(err))
	}
}

func TestToolCallLogResetsPerPrompt(t *testing.T) {
	mock := &MockChatClient{}
	mock.QueueResponse(toolCallResponse(openai.ToolCall{
		ID:   "call-1",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      "get_files_info",
			Arguments: `{}`,
		},
	}))
	mock.QueueResponse(textResponse("first", 1, 1))
	mock.QueueResponse(textResponse("second", 1, 1))
	sess := newTestSession(t, mock)

	if _, err := sess.GetResponse("list"); err != nil {
		t.Fatal(err)
	}
	if len(sess.ToolCallLog()) != 1 {
		t.Fatalf("expected one entry, got %v", sess.ToolCallLog())
	}

	if _, err := sess.GetResponse("chat only"); err != nil {
		t.Fatal(err)
	}
	if len(sess.ToolCallLog()) != 0 {
		t.Fatalf("log must reset per prompt, got %v", sess.ToolCallLog())
	}
}
