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
	"context"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// MockChatClient returns queued responses in order and records every request
// it sees.
type MockChatClient struct {
	mu        sync.Mutex
	responses []openai.ChatCompletionResponse
	Requests  []openai.ChatCompletionRequest
	Err       error
}

func (m *MockChatClient) QueueResponse(resp openai.ChatCompletionResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return openai.ChatCompletionResponse{}, m.Err
	}
	if len(m.responses) == 0 {
		return openai.ChatCompletionResponse{}, fmt.Errorf("mock has no queued responses")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func textResponse(content string, promptTokens, completionTokens int) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			}},
		},
		Usage: openai.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
		},
	}
}

func toolCallResponse(calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				ToolCalls: calls,
			}},
		},
	}
}
