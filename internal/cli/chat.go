// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for sglctl CLI.
//
// Handles the "sglctl chat" command which provides an interactive REPL
// against the deployed SGLang server's OpenAI-compatible API.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   sglctl chat                              Chat using MODEL_PATH from env
//   sglctl chat --model meta-llama/Meta-Llama-3-70B-Instruct
//   sglctl chat --host 10.0.0.5 --port 30000
//   sglctl chat --max-tokens 512 --temperature 0.2
//
// Flags:
//   --host HOST         Server host (overrides config)
//   --port PORT         Server port (overrides config)
//   --model NAME        Model name (overrides config)
//   --max-tokens N      Maximum tokens per response
//   --temperature T     Sampling temperature
//   --quiet             Minimal output (no banner, no metrics)
//
// Interactive Commands (during chat):
//   /reset              Clear conversation history
//   /quit               Exit chat
//   /help               Show the session banner again
//   Ctrl+C              Cancel current request (at prompt: exit)
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"

	"github.com/jeranaias/sglctl/internal/config"
	"github.com/jeranaias/sglctl/internal/session"
	"github.com/jeranaias/sglctl/internal/sglang"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	// History lives next to the TOML config
	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}

	cli.LoadHistory()

	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists input history to file with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// chatState holds everything an interactive chat session needs.
type chatState struct {
	Config  *config.Config
	Client  *sglang.Client
	Session *session.Session
	Quiet   bool

	// CancelFunc for the in-flight request, nil when idle
	CancelFunc context.CancelFunc

	InputCLI *ChatCLI
}

// newChatState resolves configuration (flags > env > config file > defaults)
// and builds the client and session.
func newChatState(args *ArgParser) (*chatState, error) {
	config.LoadDotenv()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Server.Host = args.FlagOrDefault("host", cfg.Server.Host)
	cfg.Server.Port = args.FlagIntOrDefault("port", cfg.Server.Port)
	cfg.Model.Path = args.FlagOrDefault("model", cfg.Model.Path)
	cfg.Model.MaxTokens = args.FlagIntOrDefault("max-tokens", cfg.Model.MaxTokens)
	cfg.Model.Temperature = args.FlagFloatOrDefault("temperature", cfg.Model.Temperature)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client := sglang.NewClientWithConfig(&sglang.ClientConfig{
		BaseURL:      cfg.BaseURL(),
		DefaultModel: cfg.Model.Path,
	})

	sess := session.New(client, cfg.Model.Path, session.GenParams{
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
	})

	return &chatState{
		Config:   cfg,
		Client:   client,
		Session:  sess,
		Quiet:    args.BoolFlag("quiet") || args.BoolFlag("q"),
		InputCLI: NewChatCLI(),
	}, nil
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive support.
// Returns an error only for startup failures; in-session errors are reported
// and the loop continues.
func HandleChatCommand(args *ArgParser) error {
	state, err := newChatState(args)
	if err != nil {
		return err
	}

	// Refuse to start when the server is down. Everything after this point
	// degrades gracefully instead.
	ctx := context.Background()
	if err := state.Client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("server not reachable at %s (is the SGLang server running?): %w",
			state.Client.BaseURL(), err)
	}

	if !state.Quiet {
		printWelcome(state)

		// Model discovery is best-effort: a server without /v1/models still chats
		if models, err := state.Client.ListModels(ctx); err == nil && len(models) > 0 {
			fmt.Println(formatModelList(models))
			fmt.Println()
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "%s could not list served models; continuing with %s\n",
				warningStyle.Render("[Warning]"),
				state.Session.Model())
		}
	}

	defer state.InputCLI.Close()

	// First Ctrl+C during generation cancels the in-flight request.
	// At the prompt, liner reports it as ErrPromptAborted instead.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if state.CancelFunc != nil {
				state.CancelFunc()
				state.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		input, err := state.InputCLI.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D, or a closed terminal
			fmt.Println()
			printExitSummary(state)
			return nil
		}

		input = strings.TrimSpace(input)

		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "/quit":
			printExitSummary(state)
			return nil

		case "/reset":
			state.Session.Reset()
			fmt.Println(successStyle.Render("[History cleared]"))
			continue

		case "/help":
			printWelcome(state)
			continue
		}

		if err := processTurn(state, input); err != nil {
			printTurnError(err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processTurn sends one user message and displays the reply with metrics.
func processTurn(state *chatState, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	state.CancelFunc = cancel
	defer func() {
		state.CancelFunc = nil
		cancel()
	}()

	reply, metrics, err := state.Session.Send(ctx, input)
	if err != nil {
		return err
	}

	fmt.Println()
	if !state.Quiet {
		fmt.Println(assistantStyle.Render("assistant:"))
	}
	displayResponse(reply)
	fmt.Println()

	if !state.Quiet {
		printMetrics(metrics)
	}

	return nil
}

// printMetrics prints the per-turn metrics line. Throughput is omitted when
// the server reported no completion tokens, and the token count is omitted
// when it reported none at all.
func printMetrics(m *session.TurnMetrics) {
	parts := []string{fmt.Sprintf("Time: %.2fs", m.Elapsed.Seconds())}

	if m.HasThroughput() {
		parts = append(parts, fmt.Sprintf("Speed: %.1f tokens/s", m.TokensPerSecond))
	}
	if m.TotalTokens > 0 {
		parts = append(parts, fmt.Sprintf("Tokens: %s", formatNumber(m.TotalTokens)))
	}

	fmt.Fprintf(os.Stderr, "%s %s\n",
		metricsStyle.Render("[Metrics]"),
		infoStyle.Render(strings.Join(parts, " | ")))
}

// printTurnError reports a failed turn without ending the session.
func printTurnError(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		// Already reported by the signal handler
		return

	case sglang.IsTimeout(err):
		fmt.Fprintf(os.Stderr, "%s request timed out; the server may be overloaded\n",
			errorStyle.Render("[Error]"))

	case sglang.IsNotReachable(err):
		fmt.Fprintf(os.Stderr, "%s lost connection to the server\n",
			errorStyle.Render("[Error]"))

	default:
		if httpErr := sglang.HTTPStatusError(err); httpErr != nil {
			fmt.Fprintf(os.Stderr, "%s server returned HTTP %d\n",
				errorStyle.Render("[Error]"),
				httpErr.Status)
			if body := strings.TrimSpace(httpErr.Body); body != "" {
				fmt.Fprintln(os.Stderr, mutedStyle.Render(body))
			}
			return
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
	}
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the session banner.
func printWelcome(state *chatState) {
	width := GetTerminalWidth()

	model := state.Session.Model()
	if model == "" {
		model = "(server default)"
	}
	// Long hub IDs get truncated to the terminal width
	model = runewidth.Truncate(model, width-12, "...")

	fmt.Println()
	fmt.Println(titleStyle.Render("sglctl chat"))
	fmt.Println(separatorStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Server:"),
		valueStyle.Render(state.Client.BaseURL()))
	fmt.Printf("%s  %s\n",
		infoStyle.Render("Model:"),
		valueStyle.Render(model))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Params:"),
		valueStyle.Render(fmt.Sprintf("max_tokens=%d temperature=%.2f",
			state.Config.Model.MaxTokens, state.Config.Model.Temperature)))

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /reset, /quit, /help"))
	fmt.Println()
}

// formatModelList formats the served models for the startup output.
func formatModelList(models []sglang.ModelInfo) string {
	var b strings.Builder
	b.WriteString(infoStyle.Render("Available models:"))
	for _, m := range models {
		b.WriteString("\n  ")
		b.WriteString(valueStyle.Render(m.ID))
	}
	return b.String()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(state *chatState) {
	if state.Quiet || state.Session.Turns() == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(state.Session.StartTime()).Round(time.Second)

	fmt.Println()
	fmt.Println(titleStyle.Render("Session Summary"))
	fmt.Println(separatorStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Session:"),
		mutedStyle.Render(state.Session.ID()))
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Turns:"),
		state.Session.Turns())
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Tokens:"),
		formatNumber(state.Session.TotalTokens()))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		formatDurationShort(elapsed))

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
