package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/bazi-report/internal/domain/geo"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/report"
	"github.com/yanqian/bazi-report/internal/infra/artifact"
	"github.com/yanqian/bazi-report/internal/infra/calc"
	"github.com/yanqian/bazi-report/internal/infra/config"
	"github.com/yanqian/bazi-report/internal/infra/geocode"
	"github.com/yanqian/bazi-report/internal/infra/geostore"
	"github.com/yanqian/bazi-report/internal/infra/llm/anthropic"
	"github.com/yanqian/bazi-report/internal/infra/llm/chatgpt"
	"github.com/yanqian/bazi-report/internal/infra/llm/offline"
	"github.com/yanqian/bazi-report/internal/infra/llm/tokens"
	"github.com/yanqian/bazi-report/internal/infra/pdf"
	"github.com/yanqian/bazi-report/internal/infra/render"
)

func provideCalcClient(cfg *config.Config, logger *slog.Logger) (*calc.Client, error) {
	client, err := calc.NewClient(cfg.Calculation.BaseURL, cfg.Calculation.Timeout, logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Health(ctx); err != nil {
		logger.Warn("calculation service not reachable at startup", "url", cfg.Calculation.BaseURL, "error", err)
	}
	return client, nil
}

func provideGeoConfig(cfg *config.Config) geo.Config {
	return geo.Config{Timeout: cfg.Geocoding.Timeout}
}

func provideGeoProvider(cfg *config.Config) *geocode.NominatimClient {
	return geocode.NewNominatimClient(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.Timeout)
}

func provideGeoLimiter(cfg *config.Config) geo.Limiter {
	return geo.NewIntervalLimiter(cfg.Geocoding.MinInterval)
}

func provideGeoStore(cfg *config.Config, logger *slog.Logger) (geo.Store, func()) {
	noop := func() {}
	if cfg.Geocoding.Cache.Backend != "valkey" {
		return geostore.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(cfg.Geocoding.Cache.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return geostore.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return geostore.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return geostore.NewMemoryStore(), noop
	}
	logger.Info("geocode valkey store enabled", "addr", cfg.Geocoding.Cache.Addr)
	return geostore.NewValkeyStore(client, cfg.Geocoding.Cache.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideNarrativeProvider(cfg *config.Config, logger *slog.Logger) (narrative.Provider, error) {
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		client, err := anthropic.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("narrative provider selected", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		return client, nil
	case config.ProviderOffline:
		logger.Warn("narrative provider is offline, reports will use canned text")
		return offline.NewNarrator(), nil
	default:
		client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("narrative provider selected", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		return chatgpt.NewNarrator(client), nil
	}
}

func provideTokenCounter(cfg *config.Config) narrative.TokenCounter {
	return tokens.NewCounter(cfg.LLM.Model)
}

func provideNarrativeConfig(cfg *config.Config) narrative.Config {
	return narrative.Config{
		Model:           cfg.LLM.Model,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
	}
}

func provideHTMLRenderer(cfg *config.Config, logger *slog.Logger) (*render.HTMLRenderer, error) {
	return render.NewHTMLRenderer(cfg.Report.TemplateDir, logger)
}

func providePDFConverter(cfg *config.Config, logger *slog.Logger) (*pdf.Converter, func()) {
	converter := pdf.NewConverter(pdf.Config{
		ExecPath:      cfg.Report.Chrome.ExecPath,
		Timeout:       cfg.Report.Chrome.Timeout,
		MaxConcurrent: cfg.Report.Chrome.MaxConcurrent,
	}, logger)
	return converter, converter.Close
}

func provideArtifactStore(cfg *config.Config, logger *slog.Logger) (report.ArtifactStore, error) {
	storage := cfg.Report.Storage
	switch storage.Backend {
	case "r2":
		store, err := artifact.NewR2Store(artifact.R2Config{
			Endpoint:  storage.Endpoint,
			AccessKey: storage.AccessKey,
			SecretKey: storage.SecretKey,
			Bucket:    storage.Bucket,
			Region:    storage.Region,
			Prefix:    storage.Prefix,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init r2 artifact store: %w", err)
		}
		logger.Info("report artifacts stored in object storage", "bucket", storage.Bucket)
		return store, nil
	default:
		store, err := artifact.NewDiskStore(cfg.Report.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("init disk artifact store: %w", err)
		}
		logger.Info("report artifacts stored on disk", "dir", cfg.Report.OutputDir)
		return store, nil
	}
}

func provideReportConfig(cfg *config.Config) report.Config {
	return report.Config{
		PublicPrefix: cfg.Report.PublicPrefix,
		PDFPolicy:    report.ParsePDFPolicy(cfg.Report.PDFFailurePolicy),
	}
}
