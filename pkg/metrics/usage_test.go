package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenUsageAdd(t *testing.T) {
	total := TokenUsage{PromptTokens: 10}.Add(TokenUsage{CompletionTokens: 25})
	require.Equal(t, TokenUsage{PromptTokens: 10, CompletionTokens: 25, TotalTokens: 35}, total)
	require.False(t, total.IsZero())
	require.True(t, TokenUsage{}.IsZero())
}
