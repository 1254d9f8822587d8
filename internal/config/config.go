// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for sglctl.
//
// Settings come from three layers, lowest precedence first: built-in
// defaults, an optional TOML file at ~/.sglctl/config.toml, and environment
// variables (optionally pre-populated from a .env file in the working
// directory). Environment variables always win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sglctl configuration.
type Config struct {
	// Server settings for the SGLang endpoint
	Server ServerConfig `toml:"server"`

	// Model and generation settings
	Model ModelConfig `toml:"model"`

	// HuggingFace Hub settings
	Hub HubConfig `toml:"hub"`

	// Deployment runtime settings (advisory, consumed by the validator)
	Runtime RuntimeConfig `toml:"runtime"`
}

// ServerConfig contains the SGLang server address.
type ServerConfig struct {
	// Host is the server host (default: localhost)
	Host string `toml:"host"`
	// Port is the server port (default: 30000)
	Port int `toml:"port"`
}

// ModelConfig contains model identity and generation parameters.
type ModelConfig struct {
	// Path is the model identifier or local path
	Path string `toml:"path"`
	// MaxTokens is the maximum tokens per response (default: 256)
	MaxTokens int `toml:"max_tokens"`
	// Temperature is the sampling temperature (default: 0.7)
	Temperature float64 `toml:"temperature"`
}

// HubConfig contains HuggingFace Hub credentials.
type HubConfig struct {
	// Token is the HuggingFace access token
	Token string `toml:"token"`
}

// RuntimeConfig contains deployment runtime settings.
type RuntimeConfig struct {
	// TensorParallelSize is the tensor parallelism degree for the server
	TensorParallelSize int `toml:"tensor_parallel_size"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultModelPath is the model served when nothing else is configured.
const DefaultModelPath = "meta-llama/Meta-Llama-3-70B-Instruct"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 30000,
		},
		Model: ModelConfig{
			Path:        DefaultModelPath,
			MaxTokens:   256,
			Temperature: 0.7,
		},
		Hub: HubConfig{
			Token: "",
		},
		Runtime: RuntimeConfig{
			TensorParallelSize: 4,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the sglctl configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sglctl"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// ENV FILE
// =============================================================================

// EnvFile is the conventional deployment env file in the working directory.
const EnvFile = ".env"

// EnvFileExample is the template operators copy to EnvFile.
const EnvFileExample = ".env.example"

// LoadDotenv populates the process environment from EnvFile if it exists.
// Existing environment variables are never overwritten (godotenv semantics).
// Returns true if the file was found and loaded.
func LoadDotenv() bool {
	if _, err := os.Stat(EnvFile); err != nil {
		return false
	}
	return godotenv.Load(EnvFile) == nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load builds the effective configuration: defaults, then the optional TOML
// file, then environment variable overrides. A malformed config file is an
// error; a missing one is not.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, decErr := toml.DecodeFile(path, cfg); decErr != nil {
				return nil, fmt.Errorf("failed to decode config file: %w", decErr)
			}
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Unset or unparseable values leave the existing setting untouched.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("HF_TOKEN"); v != "" {
		c.Hub.Token = v
	}
	if v := os.Getenv("TENSOR_PARALLEL_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.Runtime.TensorParallelSize = size
		}
	}
}

// Validate checks the configuration for values the tools cannot work with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.Model.MaxTokens)
	}
	if c.Model.Temperature < 0 {
		return fmt.Errorf("temperature must be non-negative, got %g", c.Model.Temperature)
	}
	return nil
}

// BaseURL returns the server base URL derived from host and port.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// =============================================================================
// PLACEHOLDER DETECTION
// =============================================================================

// PlaceholderFor returns the documented template placeholder for a variable,
// e.g. "your_hf_token_here" for HF_TOKEN.
func PlaceholderFor(name string) string {
	return "your_" + strings.ToLower(name) + "_here"
}

// IsPlaceholder reports whether a value is the unmodified template
// placeholder for the named variable.
func IsPlaceholder(name, value string) bool {
	return value == PlaceholderFor(name)
}

// MaskSecret returns a display-safe form of a sensitive value: the first
// eight characters followed by "...", or "***" for short values.
func MaskSecret(value string) string {
	if len(value) > 8 {
		return value[:8] + "..."
	}
	return "***"
}
