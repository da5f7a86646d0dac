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

// Package chat drives the agent loop: it samples completions from an
// OpenAI-compatible endpoint, routes tool calls through the sandboxed
// registry, and feeds the textual results back until the model answers in
// plain text.
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"toolfence/internal/config"
	apperrors "toolfence/internal/errors"
	"toolfence/internal/tools"
	systemprompt "toolfence/system_prompt"
)

// TokenUsage reports the token counts of the last sampled response.
type TokenUsage struct {
	PromptTokens   int
	ResponseTokens int
}

// Session represents a chat session with conversation state.
//
// Thread-safety: message and log operations are protected by an internal
// mutex; the registry has its own guarantees.
type Session struct {
	Client       ChatClient
	Config       *config.Config
	ToolRegistry *tools.Registry

	mu          sync.Mutex
	messages    []openai.ChatCompletionMessage
	toolCallLog []string
	usage       TokenUsage
	logger      zerolog.Logger
}

var defaultSystemPrompt = mustLoadSystemPrompt()

func mustLoadSystemPrompt() string {
	prompt, err := systemprompt.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load system prompt: %v", err))
	}
	return prompt
}

// NewSession creates a chat session with a real OpenAI-compatible client.
func NewSession(cfg *config.Config) (*Session, error) {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		clientConfig.BaseURL = cfg.APIURL
	}
	client := openai.NewClientWithConfig(clientConfig)
	return NewSessionWithClient(cfg, client)
}

// NewSessionWithClient creates a chat session with a provided client (for testing).
func NewSessionWithClient(cfg *config.Config, client ChatClient) (*Session, error) {
	registry, err := tools.NewRegistryWithPolicy(cfg.ToolOptions(), cfg.ToolPolicy())
	if err != nil {
		return nil, err
	}

	return &Session{
		Client:       client,
		Config:       cfg,
		ToolRegistry: registry,
		messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: defaultSystemPrompt,
			},
		},
		logger: zerolog.Nop(),
	}, nil
}

// SetLogger installs a logger on the session and its tool registry.
func (s *Session) SetLogger(logger zerolog.Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
	s.ToolRegistry.SetLogger(logger)
}

// AddMessage adds a message to the conversation history.
func (s *Session) AddMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:    role,
		Content: content,
	})
}

// AddAssistantMessage adds an assistant message with optional tool calls.
func (s *Session) AddAssistantMessage(content string, toolCalls []openai.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResultMessage appends a tool result message. The registry already
// folded any failure into the result text, so the model always sees a plain
// string in the tool role.
func (s *Session) AddToolResultMessage(call openai.ToolCall, result *tools.ToolResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := call.Function.Name
	if name == "" {
		name = "unknown_tool"
	}
	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    result.Result,
		Name:       name,
		ToolCallID: call.ID,
	})
}

// MessagesSnapshot returns a copy of the current messages.
func (s *Session) MessagesSnapshot() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]openai.ChatCompletionMessage, len(s.messages))
	copy(msgs, s.messages)
	return msgs
}

// ToolCallLog returns the tool call summaries recorded since the last prompt.
func (s *Session) ToolCallLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.toolCallLog...)
}

// Usage returns the token counts of the last response.
func (s *Session) Usage() TokenUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// GetResponseWithContext sends the prompt and samples completions until the
// model stops requesting tools, executing each requested call in between.
func (s *Session) GetResponseWithContext(ctx context.Context, prompt string) (string, error) {
	s.AddMessage(openai.ChatMessageRoleUser, prompt)

	s.mu.Lock()
	s.toolCallLog = nil
	s.mu.Unlock()

	for {
		req := openai.ChatCompletionRequest{
			Model:    s.Config.Model,
			Messages: s.MessagesSnapshot(),
			Tools:    s.ToolRegistry.OpenAITools(),
		}
		if s.Config.Temperature != nil {
			req.Temperature = *s.Config.Temperature
		}
		if s.Config.MaxTokens != nil {
			req.MaxTokens = *s.Config.MaxTokens
		}

		resp, err := s.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", apperrors.Wrap(apperrors.CodeAPI, "creating completion", err)
		}
		if len(resp.Choices) == 0 {
			return "", apperrors.New(apperrors.CodeAPI, "completion returned no choices")
		}

		s.mu.Lock()
		s.usage = TokenUsage{
			PromptTokens:   resp.Usage.PromptTokens,
			ResponseTokens: resp.Usage.CompletionTokens,
		}
		s.mu.Unlock()

		response := resp.Choices[0].Message
		s.AddAssistantMessage(response.Content, response.ToolCalls)

		if len(response.ToolCalls) == 0 {
			return response.Content, nil
		}

		for _, toolCall := range response.ToolCalls {
			result := s.ToolRegistry.ExecuteToolCall(ctx, toolCall)
			s.recordToolCall(result.Summary)
			s.AddToolResultMessage(toolCall, result)
		}
	}
}

// GetResponse is GetResponseWithContext with a background context.
func (s *Session) GetResponse(prompt string) (string, error) {
	return s.GetResponseWithContext(context.Background(), prompt)
}

func (s *Session) recordToolCall(summary string) {
	s.mu.Lock()
	s.toolCallLog = append(s.toolCallLog, summary)
	s.mu.Unlock()
	s.logger.Debug().Str("summary", summary).Msg("tool call recorded")
}
