// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the sglctl command-line interface.
//
// Two operator-facing commands are provided:
//
//   - chat: an interactive REPL against the SGLang chat completions
//     endpoint, reporting per-turn latency and throughput
//   - validate: a one-shot audit of deployment environment variables,
//     with advisory HuggingFace token and model-access checks
//
// The commands are independent; they share only the styling and argument
// parsing in this package.
package cli
