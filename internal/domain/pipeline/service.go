package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/geo"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	"github.com/yanqian/bazi-report/internal/domain/report"
	apperrors "github.com/yanqian/bazi-report/pkg/errors"
	"github.com/yanqian/bazi-report/pkg/metrics"
	"github.com/yanqian/bazi-report/pkg/util"
)

// Service runs the report pipeline.
type Service interface {
	Generate(ctx context.Context, raw birth.RawInput) Result
	Calculate(ctx context.Context, raw birth.RawInput) ChartResult
}

type service struct {
	resolver  geo.Resolver
	calc      Calculator
	generator narrative.Generator
	assembler report.Assembler
	logger    *slog.Logger
	now       util.Clock
}

// NewService is a wire provider for the pipeline domain.
func NewService(resolver geo.Resolver, calc Calculator, generator narrative.Generator, assembler report.Assembler, logger *slog.Logger) Service {
	return &service{
		resolver:  resolver,
		calc:      calc,
		generator: generator,
		assembler: assembler,
		logger:    logger.With("component", "pipeline.service"),
		now:       util.NowUTC,
	}
}

func (s *service) Generate(ctx context.Context, raw birth.RawInput) Result {
	chart := s.chart(ctx, raw)
	if !chart.OK() {
		return s.finish(Result{Failure: chart.Failure})
	}

	var sections narrative.Result
	if f := s.stage(StageGenerating, apperrors.CodeNarrative, func() error {
		var err error
		sections, err = s.generator.Generate(ctx, chart.Profile, chart.Input)
		return err
	}); f != nil {
		return s.finish(Result{Failure: f})
	}

	var rep report.Report
	if f := s.stage(StageAssembling, apperrors.CodeReportRender, func() error {
		var err error
		rep, err = s.assembler.Assemble(ctx, chart.Input, chart.Profile, sections.Sections)
		return err
	}); f != nil {
		return s.finish(Result{Failure: f})
	}

	return s.finish(Result{
		Report:     rep,
		Summary:    chart.Profile.Summary(),
		Resolution: chart.Resolution,
		Missing:    sections.Missing,
	})
}

func (s *service) Calculate(ctx context.Context, raw birth.RawInput) ChartResult {
	return s.finishChart(s.chart(ctx, raw))
}

// chart runs validation, geocoding and calculation without recording the outcome.
func (s *service) chart(ctx context.Context, raw birth.RawInput) ChartResult {
	validation := birth.Validate(raw, s.now())
	in, ok := validation.Input()
	if !ok {
		s.logger.Info("birth input rejected", "fields", validation.Messages())
		return ChartResult{Failure: &Failure{
			Stage:   StageValidating,
			Kind:    apperrors.CodeValidation,
			Message: "invalid birth details",
			Fields:  validation.Failed(),
		}}
	}

	start := time.Now()
	resolution := s.resolver.Resolve(ctx, in.Location)
	metrics.ObserveStage(string(StageGeocoding), time.Since(start))

	var prof profile.Profile
	if f := s.stage(StageCalculating, apperrors.CodeCalculation, func() error {
		var err error
		prof, err = s.calc.Calculate(ctx, profile.NewRequest(in, resolution.Timezone))
		return err
	}); f != nil {
		return ChartResult{Input: in, Resolution: resolution, Failure: f}
	}
	return ChartResult{Input: in, Resolution: resolution, Profile: prof}
}

// stage times fn and converts its error into a Failure tagged with stage.
func (s *service) stage(stage Stage, fallbackKind string, fn func() error) *Failure {
	start := time.Now()
	err := fn()
	metrics.ObserveStage(string(stage), time.Since(start))
	if err == nil {
		return nil
	}
	return &Failure{
		Stage:   stage,
		Kind:    apperrors.CodeOf(err, fallbackKind),
		Message: messageOf(err),
		Err:     err,
	}
}

func (s *service) finish(res Result) Result {
	if res.Failure != nil {
		s.logFailure(res.Failure)
		return Result{Failure: res.Failure}
	}
	metrics.ObserveRun("done", string(StageDone), "")
	s.logger.Info("report generated",
		"report_id", res.Report.ID,
		"stage", StageDone,
		"degraded", res.Report.Degraded,
		"geocode_source", res.Resolution.Source,
		"missing_sections", len(res.Missing),
	)
	return res
}

func (s *service) finishChart(res ChartResult) ChartResult {
	if res.Failure != nil {
		s.logFailure(res.Failure)
		return ChartResult{Failure: res.Failure}
	}
	s.logger.Info("chart calculated", "timezone", res.Resolution.Timezone, "pillars", res.Profile.PillarsString())
	return res
}

func (s *service) logFailure(f *Failure) {
	metrics.ObserveRun("failed", string(f.Stage), f.Kind)
	if f.Stage == StageValidating {
		return
	}
	s.logger.Error("report pipeline failed", "stage", f.Stage, "kind", f.Kind, "error", f.Err)
}

func messageOf(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
