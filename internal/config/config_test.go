// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 30000, cfg.Server.Port)
	assert.Equal(t, DefaultModelPath, cfg.Model.Path)
	assert.Equal(t, 256, cfg.Model.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Model.Temperature, 1e-9)
	assert.Equal(t, 4, cfg.Runtime.TensorParallelSize)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "10.0.0.5")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("MODEL_PATH", "mistralai/Mistral-7B-Instruct-v0.3")
	t.Setenv("HF_TOKEN", "hf_example_token")
	t.Setenv("TENSOR_PARALLEL_SIZE", "8")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "10.0.0.5", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mistralai/Mistral-7B-Instruct-v0.3", cfg.Model.Path)
	assert.Equal(t, "hf_example_token", cfg.Hub.Token)
	assert.Equal(t, 8, cfg.Runtime.TensorParallelSize)
}

func TestApplyEnvOverridesIgnoresBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 30000, cfg.Server.Port, "unparseable port should keep default")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Model.MaxTokens = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Model.Temperature = -0.1
	assert.Error(t, cfg.Validate())
}

func TestBaseURL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:30000", cfg.BaseURL())

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 30001
	assert.Equal(t, "http://0.0.0.0:30001", cfg.BaseURL())
}

func TestPlaceholderDetection(t *testing.T) {
	assert.Equal(t, "your_hf_token_here", PlaceholderFor("HF_TOKEN"))
	assert.True(t, IsPlaceholder("HF_TOKEN", "your_hf_token_here"))
	assert.False(t, IsPlaceholder("HF_TOKEN", "hf_real_token_value"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "hf_abcde...", MaskSecret("hf_abcdefghij"))
	assert.Equal(t, "***", MaskSecret("short"))
}
