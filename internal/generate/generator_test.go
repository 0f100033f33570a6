package generate

import (
	"strings"
	"testing"
)

// TestTruncatePrompt verifies oversized prompts are cut to the
// estimated token budget.
func TestTruncatePrompt(t *testing.T) {
	g := &Generator{maxTokens: DefaultMaxPromptTokens}

	long := strings.Repeat("This is a test prompt. ", 4000) // ~92k chars

	truncated := g.truncatePrompt(long)

	expectedMaxChars := DefaultMaxPromptTokens * 4
	if len(truncated) != expectedMaxChars {
		t.Errorf("Expected truncated length %d, got %d", expectedMaxChars, len(truncated))
	}
	if !strings.HasPrefix(long, truncated) {
		t.Error("Truncated prompt should be a prefix of the original")
	}
}

// TestTruncatePrompt_Short verifies short prompts pass through
// unchanged.
func TestTruncatePrompt_Short(t *testing.T) {
	g := &Generator{maxTokens: DefaultMaxPromptTokens}

	short := strings.Repeat("Short. ", 140)

	if got := g.truncatePrompt(short); got != short {
		t.Error("Short prompt should not be truncated")
	}
}

// TestTruncatePrompt_CustomLimit verifies a custom token budget is
// honored.
func TestTruncatePrompt_CustomLimit(t *testing.T) {
	g := &Generator{maxTokens: 1000}

	prompt := strings.Repeat("Content. ", 1000) // ~9000 chars

	truncated := g.truncatePrompt(prompt)
	if len(truncated) != 4000 {
		t.Errorf("Expected truncated length 4000, got %d", len(truncated))
	}
}
