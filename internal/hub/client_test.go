// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// MODEL ID CLASSIFICATION TESTS
// =============================================================================

func TestIsHubModelID(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"meta-llama/Meta-Llama-3-70B-Instruct", true},
		{"mistralai/Mistral-7B-Instruct-v0.3", true},
		{"huggingface/CodeBERTa-small-v1", true},
		{"/models/llama-3-70b", false},
		{"./local-model", false},
		{"some-org/some-model", false},
	}

	for _, tt := range tests {
		if got := IsHubModelID(tt.path); got != tt.want {
			t.Errorf("IsHubModelID(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestWhoAmINotConfigured(t *testing.T) {
	client := NewClient("")

	_, err := client.WhoAmI(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("WhoAmI() error = %v, want ErrNotConfigured", err)
	}
}

func TestWhoAmI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/whoami-v2" {
			t.Errorf("path = %q, want /api/whoami-v2", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer hf_test_token" {
			t.Errorf("Authorization = %q", auth)
		}
		w.Write([]byte(`{"name": "operator", "fullname": "Ops Operator", "type": "user"}`))
	}))
	defer srv.Close()

	client := NewClient("hf_test_token").WithBaseURL(srv.URL)
	account, err := client.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI() error = %v", err)
	}

	if account.Name != "operator" {
		t.Errorf("Name = %q, want 'operator'", account.Name)
	}
}

func TestWhoAmIAuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("hf_bad_token").WithBaseURL(srv.URL)
	_, err := client.WhoAmI(context.Background())
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("WhoAmI() error = %v, want ErrAuthFailed", err)
	}
}

func TestModelInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/models/meta-llama/Meta-Llama-3-70B-Instruct" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id": "meta-llama/Meta-Llama-3-70B-Instruct", "private": false, "gated": "manual"}`))
	}))
	defer srv.Close()

	client := NewClient("hf_test_token").WithBaseURL(srv.URL)
	model, err := client.ModelInfo(context.Background(), "meta-llama/Meta-Llama-3-70B-Instruct")
	if err != nil {
		t.Fatalf("ModelInfo() error = %v", err)
	}

	if model.ID != "meta-llama/Meta-Llama-3-70B-Instruct" {
		t.Errorf("ID = %q", model.ID)
	}
	if !bool(model.Gated) {
		t.Error("Gated = false, want true for gated mode 'manual'")
	}
}

func TestModelInfoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("hf_test_token").WithBaseURL(srv.URL)
	_, err := client.ModelInfo(context.Background(), "meta-llama/no-such-model")
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("ModelInfo() error = %v, want ErrModelNotFound", err)
	}
}

func TestGatedFlagUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"auto"`, true},
		{`"manual"`, true},
		{`"false"`, false},
	}

	for _, tt := range tests {
		var g GatedFlag
		if err := g.UnmarshalJSON([]byte(tt.raw)); err != nil {
			t.Errorf("UnmarshalJSON(%s) error = %v", tt.raw, err)
			continue
		}
		if bool(g) != tt.want {
			t.Errorf("GatedFlag(%s) = %v, want %v", tt.raw, bool(g), tt.want)
		}
	}
}

func TestTokenFingerprint(t *testing.T) {
	client := NewClient("")
	if got := client.TokenFingerprint(); got != "none" {
		t.Errorf("TokenFingerprint() = %q, want 'none'", got)
	}

	client = NewClient("hf_test_token")
	fp := client.TokenFingerprint()
	if len(fp) != 8 {
		t.Errorf("fingerprint length = %d, want 8 hex chars", len(fp))
	}
	if fp == "hf_test_" {
		t.Error("fingerprint must not leak token prefix")
	}
}
