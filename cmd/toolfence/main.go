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
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	debugMode  = flag.Bool("d", false, "Enable debug mode")
	logFile    = flag.String("log-file", "", "Log file path (logs disabled by default)")
	configPath = flag.String("config", "config.json", "Path to config file")
	verbose    = flag.Bool("verbose", false, "Print token usage and prompt echo in one-shot mode")
)

func main() {
	flag.Parse()

	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	logger := initLogger(*debugMode, *logFile)
	logger.Info().Msg("Toolfence starting")

	args := flag.Args()
	if len(args) > 0 {
		os.Exit(runOneShot(logger, args[0], *verbose))
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: Missing CLI argument.")
		fmt.Fprintln(os.Stderr, `Usage: toolfence "Your prompt here" [--verbose]`)
		os.Exit(1)
	}

	runInteractive(logger)
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	} else {
		output = io.Discard
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
