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
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"toolfence/internal/chat"
	"toolfence/internal/config"
)

func runInteractive(logger zerolog.Logger) {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	session, err := chat.NewSession(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create session")
	}
	session.SetLogger(logger)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "❯ ",
		AutoComplete:    getCommandCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize readline")
	}
	defer rl.Close()

	fmt.Println("Toolfence by Dyne.org")
	fmt.Printf("Connected to: %s\n", cfg.APIURL)
	fmt.Printf("Model in use: %s\n", cfg.Model)
	fmt.Printf("Sandbox root: %s\n", session.ToolRegistry.Root())
	fmt.Println()

	for {
		line, err := rl.Readline()
		switch classifyReadlineError(line, err) {
		case readlineContinue:
			continue
		case readlineExit:
			logger.Debug().Msg("Readline closed")
			logger.Info().Msg("Session ended")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		logger.Info().Str("user_input", line).Msg("User input received")

		if strings.HasPrefix(line, "/") {
			if handleCommand(line, session) {
				logger.Info().Msg("Session ended")
				return
			}
			continue
		}

		handleConversation(line, session, logger)
	}
}

func handleConversation(line string, session *chat.Session, logger zerolog.Logger) {
	response, err := session.GetResponseWithContext(context.Background(), line)
	if err != nil {
		logger.Error().Err(err).Msg("Completion failed")
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, entry := range session.ToolCallLog() {
		fmt.Printf("- %s\n", entry)
	}
	fmt.Println(response)
}

// handleCommand processes a slash command; true means quit.
func handleCommand(line string, session *chat.Session) bool {
	switch strings.Fields(line)[0] {
	case "/quit", "/exit":
		return true
	case "/tools":
		for _, name := range session.ToolRegistry.GetToolNames() {
			fmt.Println(name)
		}
	case "/help":
		fmt.Println("/help   show this help")
		fmt.Println("/tools  list available tools")
		fmt.Println("/quit   exit the session")
	default:
		fmt.Printf("Unknown command: %s\n", line)
	}
	return false
}

func getCommandCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("/help"),
		readline.PcItem("/tools"),
		readline.PcItem("/quit"),
	)
}
