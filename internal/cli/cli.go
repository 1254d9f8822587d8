// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for sglctl.
package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdChat
	CmdValidate
	CmdVersion
	CmdUnknown
)

const usageText = `sglctl - operator tools for an SGLang inference deployment

Usage:
  sglctl chat [flags]        Interactive chat against the deployed server
  sglctl validate            Validate deployment environment configuration
  sglctl version             Show version information
  sglctl help                Show this help

Chat flags:
  --host HOST                Server host (default: localhost or SERVER_HOST)
  --port PORT                Server port (default: 30000 or SERVER_PORT)
  --model NAME               Model name (default: MODEL_PATH)
  --max-tokens N             Maximum tokens per response (default: 256)
  --temperature T            Sampling temperature (default: 0.7)
  --quiet                    Minimal output

Interactive commands (during chat):
  /reset                     Clear conversation history
  /quit                      Exit chat
  /help                      Show the session banner again

The validate command takes no flags; it reads the process environment,
optionally pre-populated from a .env file in the working directory, and
exits 0 only when all required checks pass.
`

// Parse parses os.Args into a command and its remaining arguments.
func Parse() (Command, *ArgParser) {
	if len(os.Args) < 2 {
		return CmdHelp, NewArgParser(nil)
	}

	cmd := os.Args[1]
	rest := os.Args[2:]

	switch cmd {
	case "chat":
		return CmdChat, NewArgParser(rest)
	case "validate", "validate-env":
		return CmdValidate, NewArgParser(rest)
	case "version", "--version", "-v":
		return CmdVersion, NewArgParser(rest)
	case "help", "--help", "-h":
		return CmdHelp, NewArgParser(rest)
	default:
		return CmdUnknown, NewArgParser(os.Args[1:])
	}
}

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("sglctl %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
