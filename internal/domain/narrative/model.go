package narrative

import (
	"context"

	"github.com/yanqian/bazi-report/pkg/metrics"
)

// PlaceholderBody is rendered for sections the provider did not produce.
const PlaceholderBody = "_This section could not be generated for this report. Please request a new report to receive the full reading._"

// Table is a simple header plus rows grid lifted from a markdown table.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Section is one rendered catalogue entry.
type Section struct {
	Number      int    `json:"number"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Table       *Table `json:"table,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Result is the outcome of a successful generation.
type Result struct {
	Sections []Section
	Raw      string
	Missing  []string
	Usage    metrics.TokenUsage
	Model    string
}

// Verified reports whether every catalogue section came from the provider.
func (r Result) Verified() bool {
	return len(r.Missing) == 0
}

// Request is handed to a streaming provider.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Stream yields text fragments until io.EOF.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Provider starts a streamed text generation.
type Provider interface {
	StreamText(ctx context.Context, req Request) (Stream, error)
}

// TokenCounter estimates token counts for usage accounting.
type TokenCounter interface {
	Count(text string) int
}
