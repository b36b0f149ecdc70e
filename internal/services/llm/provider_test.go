package llm

import (
	"context"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/common"
)

func newTestFactory() *ProviderFactory {
	return NewProviderFactory(
		&common.GeminiConfig{Model: "gemini-3-flash-preview", Timeout: "5m", RateLimit: "4s", Temperature: 0.3},
		&common.ClaudeConfig{Model: "claude-3-5-haiku-20241022", MaxTokens: 8192, Timeout: "5m", Temperature: 0.3},
		&common.LLMConfig{DefaultProvider: common.LLMProviderGemini, MaxTokens: 4000, MaxRetries: 3},
		nil,
		arbor.NewLogger(),
	)
}

func TestDetectProvider(t *testing.T) {
	factory := newTestFactory()

	tests := []struct {
		model string
		want  ProviderType
	}{
		{"", ProviderGemini},
		{"claude-3-5-haiku-20241022", ProviderClaude},
		{"claude/claude-sonnet-4", ProviderClaude},
		{"anthropic/claude-opus-4", ProviderClaude},
		{"Claude-3-Opus", ProviderClaude},
		{"gemini-3-flash-preview", ProviderGemini},
		{"gemini/gemini-pro", ProviderGemini},
		{"google/gemini-pro", ProviderGemini},
		{"gpt-4", ProviderGemini},
	}

	for _, tt := range tests {
		if got := factory.DetectProvider(tt.model); got != tt.want {
			t.Errorf("DetectProvider(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestDetectProviderClaudeDefault(t *testing.T) {
	factory := NewProviderFactory(
		&common.GeminiConfig{Model: "gemini-3-flash-preview"},
		&common.ClaudeConfig{Model: "claude-3-5-haiku-20241022"},
		&common.LLMConfig{DefaultProvider: common.LLMProviderClaude},
		nil,
		arbor.NewLogger(),
	)

	if got := factory.DetectProvider(""); got != ProviderClaude {
		t.Errorf("DetectProvider(\"\") = %q, want claude default", got)
	}
	if got := factory.DetectProvider("mistral-large"); got != ProviderClaude {
		t.Errorf("DetectProvider(unknown) = %q, want claude default", got)
	}
}

func TestNormalizeModel(t *testing.T) {
	factory := newTestFactory()

	tests := []struct {
		model string
		want  string
	}{
		{"claude/claude-sonnet-4", "claude-sonnet-4"},
		{"anthropic/claude-opus-4", "claude-opus-4"},
		{"gemini/gemini-pro", "gemini-pro"},
		{"GEMINI/gemini-pro", "gemini-pro"},
		{"gemini-3-flash-preview", "gemini-3-flash-preview"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := factory.NormalizeModel(tt.model); got != tt.want {
			t.Errorf("NormalizeModel(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestGetDefaultModel(t *testing.T) {
	factory := newTestFactory()

	if got := factory.GetDefaultModel(ProviderClaude); got != "claude-3-5-haiku-20241022" {
		t.Errorf("claude default = %q", got)
	}
	if got := factory.GetDefaultModel(ProviderGemini); got != "gemini-3-flash-preview" {
		t.Errorf("gemini default = %q", got)
	}
}

func TestHasCredentials(t *testing.T) {
	// Clear ambient credentials so the test is deterministic regardless of
	// the host environment.
	for _, env := range []string{"QUAESTOR_GEMINI_API_KEY", "GEMINI_API_KEY", "QUAESTOR_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(env, "")
	}

	factory := newTestFactory()
	if factory.HasCredentials(context.Background()) {
		t.Fatal("expected no credentials with empty config and environment")
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	if !factory.HasCredentials(context.Background()) {
		t.Fatal("expected credentials from environment")
	}
}

func TestSummarizerIsConfigured(t *testing.T) {
	for _, env := range []string{"QUAESTOR_GEMINI_API_KEY", "GEMINI_API_KEY", "QUAESTOR_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(env, "")
	}

	factory := newTestFactory()
	summarizer := NewSummarizer(factory, &common.LLMConfig{DefaultProvider: common.LLMProviderGemini, MaxTokens: 4000}, arbor.NewLogger())

	if summarizer.IsConfigured() {
		t.Fatal("expected unconfigured summarizer")
	}

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	if !summarizer.IsConfigured() {
		t.Fatal("expected configured summarizer after setting key")
	}
}

func TestRequestTimeout(t *testing.T) {
	factory := newTestFactory()

	if got := factory.requestTimeout(ProviderGemini); got.Minutes() != 5 {
		t.Errorf("gemini timeout = %s, want 5m", got)
	}

	factory.claudeConfig.Timeout = "bogus"
	if got := factory.requestTimeout(ProviderClaude); got != defaultRequestTimeout {
		t.Errorf("invalid timeout = %s, want default", got)
	}
}
