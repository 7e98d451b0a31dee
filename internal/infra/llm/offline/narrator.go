package offline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yanqian/bazi-report/internal/domain/narrative"
)

// Narrator writes a fixed-form report locally. It is used for development and
// demos when no model provider is configured.
type Narrator struct {
	chunkSize int
}

// NewNarrator builds a narrator that streams its output in small chunks.
func NewNarrator() *Narrator {
	return &Narrator{chunkSize: 64}
}

// StreamText implements narrative.Provider.
func (n *Narrator) StreamText(ctx context.Context, req narrative.Request) (narrative.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("# Your Personalized BaZi Destiny Report\n\n")
	for _, def := range narrative.Catalogue {
		fmt.Fprintf(&b, "## %d. %s\n\n", def.Number, def.Title)
		for _, g := range def.Guidance {
			fmt.Fprintf(&b, "- **%s**: reflect on how this applies to your chart.\n", g)
		}
		if def.Key == narrative.LuckCycleKey {
			b.WriteString("\n| Pillar | Ages | Theme |\n|---|---|---|\n| Current | now | Consolidation |\n| Next | +10 | Expansion |\n")
		}
		b.WriteString("\n")
	}
	return &stream{ctx: ctx, text: b.String(), size: n.chunkSize}, nil
}

type stream struct {
	ctx  context.Context
	text string
	size int
	pos  int
}

func (s *stream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.text) {
		return "", io.EOF
	}
	end := s.pos + s.size
	if end > len(s.text) {
		end = len(s.text)
	}
	chunk := s.text[s.pos:end]
	s.pos = end
	return chunk, nil
}

func (s *stream) Close() error {
	s.pos = len(s.text)
	return nil
}

var _ narrative.Provider = (*Narrator)(nil)
