package narrative

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	apperrors "github.com/yanqian/bazi-report/pkg/errors"
	"github.com/yanqian/bazi-report/pkg/metrics"
)

// Generator produces the narrative sections for a chart.
type Generator interface {
	Generate(ctx context.Context, prof profile.Profile, in birth.Input) (Result, error)
}

// Config controls the provider request.
type Config struct {
	Model           string
	MaxOutputTokens int
	Temperature     float32
	Timeout         time.Duration
}

type generator struct {
	cfg      Config
	provider Provider
	counter  TokenCounter
	logger   *slog.Logger
}

// NewGenerator is a wire provider for the narrative domain.
func NewGenerator(cfg Config, provider Provider, counter TokenCounter, logger *slog.Logger) Generator {
	if counter == nil {
		counter = approxCounter{}
	}
	return &generator{
		cfg:      cfg,
		provider: provider,
		counter:  counter,
		logger:   logger.With("component", "narrative.generator"),
	}
}

func (g *generator) Generate(ctx context.Context, prof profile.Profile, in birth.Input) (Result, error) {
	system, prompt, err := BuildPrompt(prof, in)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeNarrative, "failed to build narrative prompt", err)
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	stream, err := g.provider.StreamText(ctx, Request{
		Model:       g.cfg.Model,
		System:      system,
		Prompt:      prompt,
		MaxTokens:   g.cfg.MaxOutputTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeNarrative, "narrative provider unavailable", err)
	}

	text, err := g.collect(ctx, stream)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeNarrative, "narrative stream interrupted", err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, apperrors.Wrap(apperrors.CodeNarrative, "narrative provider returned no content", nil)
	}

	usage := metrics.TokenUsage{
		PromptTokens:     g.counter.Count(system) + g.counter.Count(prompt),
		CompletionTokens: g.counter.Count(text),
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	metrics.ObserveTokens(usage)
	if g.cfg.MaxOutputTokens > 0 && usage.CompletionTokens >= g.cfg.MaxOutputTokens {
		g.logger.Warn("narrative output reached the token budget", "budget", g.cfg.MaxOutputTokens)
	}

	sections := ParseSections(text)
	missing := MissingKeys(sections)
	if len(missing) > 0 {
		g.logger.Warn("narrative sections missing, placeholders used", "missing", missing)
	} else {
		g.logger.Info("narrative sections verified", "sections", len(sections))
	}

	return Result{
		Sections: sections,
		Raw:      text,
		Missing:  missing,
		Usage:    usage,
		Model:    g.cfg.Model,
	}, nil
}

func (g *generator) collect(ctx context.Context, stream Stream) (string, error) {
	defer stream.Close()

	var (
		builder strings.Builder
		chunks  int
	)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		delta, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		builder.WriteString(delta)
		chunks++
	}
	g.logger.Debug("narrative stream collected", "chunks", chunks, "bytes", builder.Len())
	return builder.String(), nil
}

// approxCounter assumes roughly four bytes per token.
type approxCounter struct{}

func (approxCounter) Count(text string) int {
	return (len(text) + 3) / 4
}
