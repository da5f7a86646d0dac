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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"toolfence/internal/chat"
	"toolfence/internal/config"
)

// runOneShot answers a single prompt and exits. The agent loop runs tool
// calls to completion before the final answer is printed.
func runOneShot(logger zerolog.Logger, prompt string, verbose bool) int {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	session, err := chat.NewSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	session.SetLogger(logger)

	response, err := session.GetResponseWithContext(context.Background(), prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "An unexpected error occurred during API interaction: %v\n", err)
		return 1
	}

	fmt.Print(renderOneShot(prompt, response, session.ToolCallLog(), session.Usage(), verbose))
	return 0
}

// renderOneShot formats the one-shot output. Tool call summaries come first,
// one per line; verbose mode adds the prompt echo and a token usage block.
func renderOneShot(prompt, response string, toolCalls []string, usage chat.TokenUsage, verbose bool) string {
	var b strings.Builder

	if verbose {
		fmt.Fprintf(&b, "User prompt: %s\n", prompt)
	}
	if len(toolCalls) > 0 {
		b.WriteString("Tool calls executed:\n")
		for _, entry := range toolCalls {
			fmt.Fprintf(&b, "- %s\n", entry)
		}
	}
	b.WriteString(response)
	b.WriteString("\n")

	if verbose {
		b.WriteString("\n--- Token Usage ---\n")
		fmt.Fprintf(&b, "Prompt tokens: %d\n", usage.PromptTokens)
		fmt.Fprintf(&b, "Response tokens: %d\n", usage.ResponseTokens)
		b.WriteString("-------------------\n")
	}

	return b.String()
}
