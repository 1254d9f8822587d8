// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// validate.go - Environment validation command for sglctl.
//
// Handles the "sglctl validate" command which checks that the deployment
// environment is configured before the SGLang server is launched.
//
// Command: validate
// Short:   Validate deployment environment configuration
// Aliases: validate-env
//
// Checks Performed:
//   1. .env File          - Present in the working directory
//   2. Required Vars      - HF_TOKEN set and not a placeholder
//   3. Optional Vars      - MODEL_PATH, SERVER_HOST, SERVER_PORT,
//                           TENSOR_PARALLEL_SIZE (warn only)
//   4. Hub Credentials    - HF_TOKEN accepted by the HuggingFace Hub (warn only)
//   5. Model Access       - Configured model reachable with the token, or
//                           local path exists (warn only)
//
// Status Symbols:
//   [OK]       Pass  - Check successful
//   [!!]       Warn  - Advisory finding, does not affect exit code
//   [FAIL]     Fail  - Required check failed
//
// Exit Codes:
//   0   All required checks passed (warnings allowed)
//   1   .env missing or a required variable unset/placeholder
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sglctl/internal/config"
	"github.com/jeranaias/sglctl/internal/hub"
	"github.com/jeranaias/sglctl/internal/styles"
)

// =============================================================================
// VALIDATE STYLES
// =============================================================================

var (
	// Hint style for remediation suggestions
	hintStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			PaddingLeft(2)

	// Check message style
	checkMsgStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)
)

// =============================================================================
// CHECK TYPES
// =============================================================================

// hubBaseURL is the Hub endpoint used by the remote checks. Tests point it
// at a local server.
var hubBaseURL = hub.DefaultBaseURL

// requiredVars must be set to real values before launching the server.
var requiredVars = []string{"HF_TOKEN"}

// optionalVars have working defaults; unset ones only produce warnings.
var optionalVars = []string{"MODEL_PATH", "SERVER_HOST", "SERVER_PORT", "TENSOR_PARALLEL_SIZE"}

// CheckStatus represents the outcome of a validation check.
type CheckStatus int

const (
	// CheckPass indicates the check passed.
	CheckPass CheckStatus = iota
	// CheckWarn indicates an advisory finding that does not affect the exit code.
	CheckWarn
	// CheckFail indicates a required check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Symbol returns the styled symbol for the check status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return successStyle.Render("[OK]")
	case CheckWarn:
		return warningStyle.Render("[!!]")
	case CheckFail:
		return errorStyle.Render("[FAIL]")
	default:
		return "?"
	}
}

// Check represents a single validation check result.
type Check struct {
	Name    string
	Status  CheckStatus
	Message string
	Hint    string // Remediation suggestion shown below non-passing checks
}

// Render returns a formatted line for the check.
func (c *Check) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), checkMsgStyle.Render(c.Message))
	if c.Status != CheckPass && c.Hint != "" {
		result += "\n" + hintStyle.Render("-> "+c.Hint)
	}
	return result
}

// =============================================================================
// HANDLE VALIDATE
// =============================================================================

// ErrValidationFailed is returned when a required check fails. The caller
// maps it to exit code 1.
var ErrValidationFailed = errors.New("environment validation failed")

// HandleValidateCommand handles the "validate" command.
// Hub checks are advisory: the exit code depends only on the .env file and
// the required variables.
func HandleValidateCommand(args *ArgParser) error {
	checks := runValidateChecks()

	passed, warned, failed := 0, 0, 0
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("sglctl environment validation"))
	fmt.Println(separatorStyle.Render(strings.Repeat("=", 41)))
	fmt.Println()

	for _, check := range checks {
		fmt.Println(check.Render())
	}

	fmt.Println()
	fmt.Println(separatorStyle.Render(strings.Repeat("-", 41)))

	summaryParts := []string{fmt.Sprintf("%d passed", passed)}
	if warned > 0 {
		summaryParts = append(summaryParts, warningStyle.Render(fmt.Sprintf("%d warning", warned)))
	}
	if failed > 0 {
		summaryParts = append(summaryParts, errorStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Println(mutedStyle.Render(strings.Join(summaryParts, ", ")))
	fmt.Println()

	if failed > 0 {
		fmt.Println(errorStyle.Render(
			"Environment is not ready (failed: " + strings.Join(failedCheckNames(checks), ", ") + ")"))
		return ErrValidationFailed
	}

	fmt.Println(successStyle.Render("Environment is ready."))
	return nil
}

// failedCheckNames returns the names of failing checks, in check order.
func failedCheckNames(checks []*Check) []string {
	var names []string
	for _, check := range checks {
		if check.Status == CheckFail {
			names = append(names, check.Name)
		}
	}
	return names
}

// runValidateChecks executes all checks in order.
func runValidateChecks() []*Check {
	checks := []*Check{checkEnvFile()}

	for _, name := range requiredVars {
		checks = append(checks, checkRequiredVar(name))
	}
	for _, name := range optionalVars {
		checks = append(checks, checkOptionalVar(name))
	}

	checks = append(checks, checkHubCredentials())
	checks = append(checks, checkModelAccess())

	return checks
}

// =============================================================================
// INDIVIDUAL CHECKS
// =============================================================================

// checkEnvFile verifies the .env file exists and loads it into the process
// environment so the remaining checks see its values.
func checkEnvFile() *Check {
	if !config.LoadDotenv() {
		hint := "create a " + config.EnvFile + " file in this directory"
		if _, err := os.Stat(config.EnvFileExample); err == nil {
			hint = fmt.Sprintf("cp %s %s and fill in the values", config.EnvFileExample, config.EnvFile)
		}
		return &Check{
			Name:    "env-file",
			Status:  CheckFail,
			Message: config.EnvFile + " file not found",
			Hint:    hint,
		}
	}

	return &Check{
		Name:    "env-file",
		Status:  CheckPass,
		Message: config.EnvFile + " file found",
	}
}

// checkRequiredVar fails when the variable is unset or still a placeholder.
// Values are masked in output.
func checkRequiredVar(name string) *Check {
	value := os.Getenv(name)

	if value == "" {
		return &Check{
			Name:    name,
			Status:  CheckFail,
			Message: name + " is not set",
			Hint:    "add " + name + " to " + config.EnvFile,
		}
	}

	if config.IsPlaceholder(name, value) {
		return &Check{
			Name:    name,
			Status:  CheckFail,
			Message: name + " is still the placeholder value",
			Hint:    "replace " + config.PlaceholderFor(name) + " with a real value",
		}
	}

	return &Check{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("%s is set (%s)", name, config.MaskSecret(value)),
	}
}

// checkOptionalVar warns when unset; the defaults still work.
func checkOptionalVar(name string) *Check {
	value := os.Getenv(name)

	if value == "" {
		return &Check{
			Name:    name,
			Status:  CheckWarn,
			Message: name + " is not set (using default)",
		}
	}

	return &Check{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("%s = %s", name, value),
	}
}

// checkHubCredentials verifies the token against the HuggingFace Hub.
// Advisory only: network problems or a bad token never fail validation.
func checkHubCredentials() *Check {
	token := os.Getenv("HF_TOKEN")
	if token == "" || config.IsPlaceholder("HF_TOKEN", token) {
		return &Check{
			Name:    "hub-credentials",
			Status:  CheckWarn,
			Message: "hub credential check skipped (no usable HF_TOKEN)",
		}
	}

	client := hub.NewClient(token).WithBaseURL(hubBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), hub.DefaultTimeout)
	defer cancel()

	account, err := client.WhoAmI(ctx)
	if err != nil {
		if errors.Is(err, hub.ErrAuthFailed) {
			return &Check{
				Name:    "hub-credentials",
				Status:  CheckWarn,
				Message: "HF_TOKEN was rejected by the HuggingFace Hub",
				Hint:    "generate a new token at https://huggingface.co/settings/tokens",
			}
		}
		return &Check{
			Name:    "hub-credentials",
			Status:  CheckWarn,
			Message: fmt.Sprintf("could not verify HF_TOKEN (%v)", err),
		}
	}

	return &Check{
		Name:    "hub-credentials",
		Status:  CheckPass,
		Message: fmt.Sprintf("HF_TOKEN accepted (account: %s)", account.Name),
	}
}

// checkModelAccess verifies the configured model is reachable. Hub-namespaced
// ids get a remote lookup; anything else is treated as a local path.
// Advisory only.
func checkModelAccess() *Check {
	// An unset MODEL_PATH means the server launches with the default model,
	// so that is what gets checked.
	modelPath := os.Getenv("MODEL_PATH")
	suffix := ""
	if modelPath == "" {
		modelPath = config.DefaultModelPath
		suffix = " (default)"
	}

	if !hub.IsHubModelID(modelPath) {
		if _, err := os.Stat(modelPath); err != nil {
			return &Check{
				Name:    "model-access",
				Status:  CheckWarn,
				Message: fmt.Sprintf("local model path %s does not exist", modelPath),
			}
		}
		return &Check{
			Name:    "model-access",
			Status:  CheckPass,
			Message: "local model path exists: " + modelPath,
		}
	}

	token := os.Getenv("HF_TOKEN")
	if config.IsPlaceholder("HF_TOKEN", token) {
		token = ""
	}
	client := hub.NewClient(token).WithBaseURL(hubBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), hub.DefaultTimeout)
	defer cancel()

	model, err := client.ModelInfo(ctx, modelPath)
	if err != nil {
		switch {
		case errors.Is(err, hub.ErrModelNotFound):
			return &Check{
				Name:    "model-access",
				Status:  CheckWarn,
				Message: fmt.Sprintf("model %s not found on the HuggingFace Hub", modelPath),
			}
		case errors.Is(err, hub.ErrAuthFailed):
			return &Check{
				Name:    "model-access",
				Status:  CheckWarn,
				Message: fmt.Sprintf("access to %s denied; it may be gated", modelPath),
				Hint:    "request access on the model page, then retry",
			}
		default:
			return &Check{
				Name:    "model-access",
				Status:  CheckWarn,
				Message: fmt.Sprintf("could not check model %s (%v)", modelPath, err),
			}
		}
	}

	if bool(model.Gated) {
		return &Check{
			Name:    "model-access",
			Status:  CheckPass,
			Message: fmt.Sprintf("model %s%s accessible (gated, access granted)", modelPath, suffix),
		}
	}

	return &Check{
		Name:    "model-access",
		Status:  CheckPass,
		Message: fmt.Sprintf("model accessible: %s%s", modelPath, suffix),
	}
}
