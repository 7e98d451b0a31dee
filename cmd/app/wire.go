//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/bazi-report/internal/bootstrap"
	"github.com/yanqian/bazi-report/internal/domain/geo"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/pipeline"
	"github.com/yanqian/bazi-report/internal/domain/report"
	"github.com/yanqian/bazi-report/internal/infra/calc"
	"github.com/yanqian/bazi-report/internal/infra/config"
	"github.com/yanqian/bazi-report/internal/infra/geocode"
	"github.com/yanqian/bazi-report/internal/infra/pdf"
	"github.com/yanqian/bazi-report/internal/infra/render"
	httpiface "github.com/yanqian/bazi-report/internal/interface/http"
	"github.com/yanqian/bazi-report/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCalcClient,
		provideGeoConfig,
		provideGeoProvider,
		provideGeoLimiter,
		provideGeoStore,
		geocode.NewTZFinder,
		provideNarrativeProvider,
		provideTokenCounter,
		provideNarrativeConfig,
		provideHTMLRenderer,
		providePDFConverter,
		provideArtifactStore,
		provideReportConfig,
		geo.NewResolver,
		narrative.NewGenerator,
		report.NewAssembler,
		pipeline.NewService,
		wire.Bind(new(pipeline.Calculator), new(*calc.Client)),
		wire.Bind(new(httpiface.HealthChecker), new(*calc.Client)),
		wire.Bind(new(geo.Provider), new(*geocode.NominatimClient)),
		wire.Bind(new(geo.TimezoneFinder), new(*geocode.TZFinder)),
		wire.Bind(new(report.HTMLRenderer), new(*render.HTMLRenderer)),
		wire.Bind(new(report.PDFConverter), new(*pdf.Converter)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
