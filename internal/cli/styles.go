// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for sglctl commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sglctl/internal/styles"
)

// init configures lipgloss color profile based on terminal capabilities.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// titleStyle is used for command titles and banners
	titleStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// promptStyle is the chat input prompt
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	// assistantStyle labels assistant output
	assistantStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	// infoStyle is for secondary information
	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// valueStyle highlights configuration values
	valueStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)

	// successStyle marks passing checks and confirmations
	successStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// warningStyle marks advisory findings
	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// errorStyle marks failures
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	// metricsStyle labels the per-turn metrics block
	metricsStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// separatorStyle draws horizontal rules
	separatorStyle = lipgloss.NewStyle().
			Foreground(styles.Overlay)

	// mutedStyle is for fine print
	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)
