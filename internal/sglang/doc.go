// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sglang provides the HTTP client for communicating with an SGLang
// server over its OpenAI-compatible API.
//
// The client covers the three endpoints the operator tools need: the health
// endpoint for liveness, the model listing, and chat completions. Every call
// is a single bounded attempt; there are no retries, and failures come back
// as typed errors rather than panics.
//
// # Key Types
//
//   - Client: HTTP client for the SGLang API
//   - Message: Chat message with role and content
//   - ChatRequest: Request structure for chat completions
//   - ChatResponse: Response structure with choices and usage counters
//   - ClientError: Typed error with an ErrorType category
//
// # Usage
//
// Create a client and send a chat request:
//
//	client := sglang.NewClientWithConfig(&sglang.ClientConfig{
//	    BaseURL: "http://localhost:30000",
//	})
//	resp, err := client.ChatCompletion(ctx, sglang.ChatRequest{
//	    Model:    "meta-llama/Meta-Llama-3-70B-Instruct",
//	    Messages: []sglang.Message{sglang.NewUserMessage("Hello")},
//	})
//
// # Timeouts
//
// Health checks and model listing are bounded at 5 seconds, chat completions
// at 120 seconds. Timeouts surface as the ErrTimeout sentinel so callers can
// report them distinctly from other transport failures.
package sglang
