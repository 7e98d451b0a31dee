package chatgpt

import (
	"context"
	"strings"

	"github.com/yanqian/bazi-report/internal/domain/narrative"
)

// Narrator adapts the chat completion stream to narrative.Provider.
type Narrator struct {
	client *Client
}

// NewNarrator wraps client.
func NewNarrator(client *Client) *Narrator {
	return &Narrator{client: client}
}

// StreamText implements narrative.Provider.
func (n *Narrator) StreamText(ctx context.Context, req narrative.Request) (narrative.Stream, error) {
	messages := make([]Message, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	messages = append(messages, Message{Role: "user", Content: req.Prompt})

	stream, err := n.client.CreateChatCompletionStream(ctx, ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return &textStream{stream: stream}, nil
}

type textStream struct {
	stream Stream
}

// Recv skips frames that carry no content.
func (s *textStream) Recv() (string, error) {
	for {
		chunk, err := s.stream.Recv()
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, choice := range chunk.Choices {
			b.WriteString(choice.Delta.Content)
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
}

func (s *textStream) Close() error {
	return s.stream.Close()
}

var _ narrative.Provider = (*Narrator)(nil)
