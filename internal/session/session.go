// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state of one interactive chat session.
//
// A Session owns the conversation history and the generation parameters, and
// turns each user message into a single synchronous chat completion against
// the server. The history is append-only between resets and lives only in
// process memory.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/sglctl/internal/sglang"
)

// =============================================================================
// PARAMETERS AND METRICS
// =============================================================================

// GenParams are the generation parameters sent with every turn.
type GenParams struct {
	// MaxTokens is the maximum tokens per response (positive)
	MaxTokens int
	// Temperature is the sampling temperature (non-negative)
	Temperature float64
	// Stream is passed through to the server; the response is still awaited
	// as a single complete value
	Stream bool
}

// TurnMetrics holds timing and token accounting for one completed turn.
type TurnMetrics struct {
	// Elapsed is the wall-clock duration of the request
	Elapsed time.Duration
	// TotalTokens as reported by the server (0 if absent)
	TotalTokens int
	// CompletionTokens as reported by the server (0 if absent)
	CompletionTokens int
	// TokensPerSecond is CompletionTokens / Elapsed, or 0 when either is 0
	TokensPerSecond float64
}

// HasThroughput reports whether a throughput figure is available. Callers
// omit the speed line entirely when this is false.
func (m *TurnMetrics) HasThroughput() bool {
	return m.CompletionTokens > 0 && m.TokensPerSecond > 0
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the state of one interactive conversation. It is used by a
// single foreground goroutine; only one request is ever in flight.
type Session struct {
	id     string
	client *sglang.Client
	model  string
	params GenParams

	messages    []sglang.Message
	startTime   time.Time
	turns       int
	totalTokens int
}

// New creates a session against the given client and model.
func New(client *sglang.Client, model string, params GenParams) *Session {
	if model == "" {
		model = client.GetDefaultModel()
	}
	return &Session{
		id:        uuid.NewString(),
		client:    client,
		model:     model,
		params:    params,
		messages:  make([]sglang.Message, 0),
		startTime: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Model returns the model this session talks to.
func (s *Session) Model() string {
	return s.model
}

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Turns returns the number of successfully completed turns.
func (s *Session) Turns() int {
	return s.turns
}

// TotalTokens returns the sum of server-reported total tokens across turns.
func (s *Session) TotalTokens() int {
	return s.totalTokens
}

// Len returns the number of history entries.
func (s *Session) Len() int {
	return len(s.messages)
}

// History returns a copy of the conversation history in send order.
func (s *Session) History() []sglang.Message {
	out := make([]sglang.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Reset clears the conversation history. Idempotent; the server holds no
// conversational state, so there is nothing to clear remotely.
func (s *Session) Reset() {
	s.messages = s.messages[:0]
}

// Send appends the user message to the history, requests a completion with
// the entire accumulated history, and on success appends the assistant reply
// and returns it with the turn metrics.
//
// On any failure the error is returned as-is and the history keeps the
// dangling user entry; it is not rolled back.
func (s *Session) Send(ctx context.Context, text string) (string, *TurnMetrics, error) {
	s.messages = append(s.messages, sglang.NewUserMessage(text))

	req := sglang.ChatRequest{
		Model:       s.model,
		Messages:    s.messages,
		MaxTokens:   s.params.MaxTokens,
		Temperature: s.params.Temperature,
		Stream:      s.params.Stream,
	}

	start := time.Now()
	resp, err := s.client.ChatCompletion(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		return "", nil, err
	}

	reply := resp.GetContent()
	s.messages = append(s.messages, sglang.NewAssistantMessage(reply))
	s.turns++
	s.totalTokens += resp.Usage.TotalTokens

	metrics := &TurnMetrics{
		Elapsed:          elapsed,
		TotalTokens:      resp.Usage.TotalTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	if metrics.CompletionTokens > 0 && elapsed > 0 {
		metrics.TokensPerSecond = float64(metrics.CompletionTokens) / elapsed.Seconds()
	}

	return reply, metrics, nil
}
