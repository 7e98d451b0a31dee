package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/geo"
	"github.com/yanqian/bazi-report/internal/domain/narrative"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	"github.com/yanqian/bazi-report/internal/domain/report"
	apperrors "github.com/yanqian/bazi-report/pkg/errors"
)

func TestGenerateSuccess(t *testing.T) {
	deps := newDeps(t)
	svc := deps.service()

	res := svc.Generate(context.Background(), validRaw())
	require.True(t, res.OK())
	require.True(t, res.SectionsVerified())
	require.Equal(t, "0123456789abcdef0123456789abcdef", res.Report.ID)
	require.Equal(t, "癸酉 辛酉 戊寅 癸丑", res.Summary.Pillars)
	require.Equal(t, "戊 (Yang Earth)", res.Summary.DayMaster)
	require.Equal(t, "Asia/Singapore", deps.calc.lastReq.Timezone)
	require.Equal(t, 2, deps.calc.lastReq.Hour)
	require.Equal(t, 22, deps.calc.lastReq.Minute)
	require.Equal(t, 1, deps.assembler.calls)
}

func TestGenerateValidationFailureStopsEarly(t *testing.T) {
	deps := newDeps(t)
	raw := validRaw()
	raw.Date = "1899-12-31"
	raw.Gender = "other"

	res := deps.service().Generate(context.Background(), raw)
	require.False(t, res.OK())
	require.Equal(t, StageValidating, res.Failure.Stage)
	require.Equal(t, apperrors.CodeValidation, res.Failure.Kind)
	require.Len(t, res.Failure.Fields, 2)
	require.Zero(t, deps.resolver.calls)
	require.Zero(t, deps.calc.calls)
	require.Empty(t, res.Report.ID)
}

func TestGenerateFailureStages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(d *deps)
		wantStage Stage
		wantKind  string
	}{
		{
			name:      "calculation unreachable",
			mutate:    func(d *deps) { d.calc.err = apperrors.Wrap(apperrors.CodeCalculation, "calculation service unavailable", errors.New("dial tcp")) },
			wantStage: StageCalculating,
			wantKind:  apperrors.CodeCalculation,
		},
		{
			name:      "calculation untyped error",
			mutate:    func(d *deps) { d.calc.err = errors.New("boom") },
			wantStage: StageCalculating,
			wantKind:  apperrors.CodeCalculation,
		},
		{
			name:      "narrative",
			mutate:    func(d *deps) { d.generator.err = apperrors.Wrap(apperrors.CodeNarrative, "narrative provider failed", errors.New("429")) },
			wantStage: StageGenerating,
			wantKind:  apperrors.CodeNarrative,
		},
		{
			name:      "render",
			mutate:    func(d *deps) { d.assembler.err = apperrors.Wrap(apperrors.CodeReportRender, "render failed", errors.New("template")) },
			wantStage: StageAssembling,
			wantKind:  apperrors.CodeReportRender,
		},
		{
			name:      "conversion",
			mutate:    func(d *deps) { d.assembler.err = apperrors.Wrap(apperrors.CodeReportConversion, "pdf failed", errors.New("chrome")) },
			wantStage: StageAssembling,
			wantKind:  apperrors.CodeReportConversion,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := newDeps(t)
			tc.mutate(d)

			res := d.service().Generate(context.Background(), validRaw())
			require.False(t, res.OK())
			require.False(t, res.SectionsVerified())
			require.Equal(t, tc.wantStage, res.Failure.Stage)
			require.Equal(t, tc.wantKind, res.Failure.Kind)
			require.NotEmpty(t, res.Failure.Message)
			require.Error(t, res.Failure)
			require.Empty(t, res.Report.ID)
			if tc.wantStage == StageCalculating {
				require.Zero(t, d.generator.calls)
				require.Zero(t, d.assembler.calls)
			}
		})
	}
}

func TestGenerateContinuesOnGeocodingFallback(t *testing.T) {
	d := newDeps(t)
	d.resolver.res = geo.Resolution{Location: "Atlantis", Timezone: geo.FallbackTimezone, Source: geo.SourceFallback}

	res := d.service().Generate(context.Background(), validRaw())
	require.True(t, res.OK())
	require.True(t, res.Resolution.Fallback())
	require.Equal(t, "UTC", d.calc.lastReq.Timezone)
}

func TestGenerateReportsMissingSections(t *testing.T) {
	d := newDeps(t)
	d.generator.res.Missing = []string{"celebrities"}

	res := d.service().Generate(context.Background(), validRaw())
	require.True(t, res.OK())
	require.False(t, res.SectionsVerified())
	require.Equal(t, []string{"celebrities"}, res.Missing)
}

func TestCalculateSkipsNarrative(t *testing.T) {
	d := newDeps(t)

	res := d.service().Calculate(context.Background(), validRaw())
	require.True(t, res.OK())
	require.Equal(t, "戊", res.Profile.DayMaster)
	require.Equal(t, "Singapore", res.Input.Location)
	require.Zero(t, d.generator.calls)
	require.Zero(t, d.assembler.calls)
}

func TestCalculateFailure(t *testing.T) {
	d := newDeps(t)
	d.calc.err = errors.New("schema mismatch")

	res := d.service().Calculate(context.Background(), validRaw())
	require.False(t, res.OK())
	require.Equal(t, StageCalculating, res.Failure.Stage)
	require.Equal(t, "schema mismatch", res.Failure.Message)
}

type deps struct {
	resolver  *stubResolver
	calc      *stubCalculator
	generator *stubGenerator
	assembler *stubAssembler
}

func newDeps(t *testing.T) *deps {
	t.Helper()
	pairs := [4][2]string{{"癸", "酉"}, {"辛", "酉"}, {"戊", "寅"}, {"癸", "丑"}}
	var pillars [4]profile.Pillar
	for i, pair := range pairs {
		p, err := profile.NewPillar(profile.PillarNames[i], pair[0], pair[1])
		require.NoError(t, err)
		pillars[i] = p
	}
	return &deps{
		resolver: &stubResolver{res: geo.Resolution{Location: "Singapore", Timezone: "Asia/Singapore", Source: geo.SourceProvider}},
		calc:     &stubCalculator{prof: profile.New(pillars, profile.Details{})},
		generator: &stubGenerator{res: narrative.Result{
			Sections: []narrative.Section{{Number: 1, Key: "life_paths", Title: "Three Life Path Simulations", Body: "text"}},
		}},
		assembler: &stubAssembler{},
	}
}

func (d *deps) service() Service {
	return NewService(d.resolver, d.calc, d.generator, d.assembler, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validRaw() birth.RawInput {
	return birth.RawInput{Date: "1993-09-28", Time: "02:22", Location: "Singapore", Gender: "male"}
}

type stubResolver struct {
	res   geo.Resolution
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, location string) geo.Resolution {
	s.calls++
	res := s.res
	res.ResolvedAt = time.Now()
	return res
}

func (s *stubResolver) Invalidate(context.Context, string) error { return nil }

func (s *stubResolver) Clear(context.Context) error { return nil }

func (s *stubResolver) Stats(context.Context) (geo.CacheStats, error) { return geo.CacheStats{}, nil }

type stubCalculator struct {
	prof    profile.Profile
	err     error
	calls   int
	lastReq profile.Request
}

func (s *stubCalculator) Calculate(_ context.Context, req profile.Request) (profile.Profile, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return profile.Profile{}, s.err
	}
	return s.prof, nil
}

type stubGenerator struct {
	res   narrative.Result
	err   error
	calls int
}

func (s *stubGenerator) Generate(context.Context, profile.Profile, birth.Input) (narrative.Result, error) {
	s.calls++
	if s.err != nil {
		return narrative.Result{}, s.err
	}
	return s.res, nil
}

type stubAssembler struct {
	err   error
	calls int
}

func (s *stubAssembler) Assemble(_ context.Context, in birth.Input, prof profile.Profile, sections []narrative.Section) (report.Report, error) {
	s.calls++
	if s.err != nil {
		return report.Report{}, s.err
	}
	id := "0123456789abcdef0123456789abcdef"
	return report.Report{
		ID:       id,
		Input:    in,
		Profile:  prof,
		Sections: sections,
		Files:    report.Files{HTML: "/reports/" + id + "/report.html", PDF: "/reports/" + id + "/report.pdf"},
	}, nil
}
